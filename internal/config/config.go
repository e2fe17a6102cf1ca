package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string `mapstructure:"telegram_token"`

	StoreBackend string `mapstructure:"store_backend"`
	DatabaseURL  string `mapstructure:"database_url"`
	MongoURI     string `mapstructure:"mongo_uri"`
	MongoDB      string `mapstructure:"mongo_db"`
	RedisURL     string `mapstructure:"redis_url"`

	DeadlineScanInterval time.Duration `mapstructure:"deadline_scan_interval"`
	DeadlineDailyAt      string        `mapstructure:"deadline_daily_at"`

	// ChangePollInterval refreshes live views from the document store when
	// its change stream is unavailable.
	ChangePollInterval time.Duration `mapstructure:"change_poll_interval"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	OpsAddr   string `mapstructure:"ops_addr"`

	LoginRatePerMinute int    `mapstructure:"login_rate_per_minute"`
	Timezone           string `mapstructure:"timezone"`
}

var keys = []string{
	"telegram_token",
	"store_backend",
	"database_url",
	"mongo_uri",
	"mongo_db",
	"redis_url",
	"deadline_scan_interval",
	"deadline_daily_at",
	"change_poll_interval",
	"log_level",
	"log_format",
	"ops_addr",
	"login_rate_per_minute",
	"timezone",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store_backend", BackendSQLite)
	v.SetDefault("database_url", "taskboard.db")
	v.SetDefault("mongo_db", "taskboard")
	v.SetDefault("deadline_scan_interval", "15m")
	v.SetDefault("change_poll_interval", "30s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("ops_addr", ":9090")
	v.SetDefault("login_rate_per_minute", 5)
	v.SetDefault("timezone", "Local")
}

func (c *Config) normalize() {
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.MongoURI = strings.TrimSpace(c.MongoURI)
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.DeadlineDailyAt = strings.TrimSpace(c.DeadlineDailyAt)
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendSQLite:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the %s backend", BackendMongo)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.DeadlineScanInterval < 0 {
		return fmt.Errorf("DEADLINE_SCAN_INTERVAL must not be negative")
	}
	if c.ChangePollInterval < 0 {
		return fmt.Errorf("CHANGE_POLL_INTERVAL must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// RequireToken fails when no bot token is set. Only serving needs one.
func (c Config) RequireToken() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// Location resolves the configured timezone used for day boundaries.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
