package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range keys {
		t.Setenv(strings.ToUpper(key), "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreBackend != BackendSQLite || cfg.DatabaseURL != "taskboard.db" {
		t.Fatalf("unexpected store defaults: %+v", cfg)
	}
	if cfg.DeadlineScanInterval != 15*time.Minute {
		t.Fatalf("scan interval = %s", cfg.DeadlineScanInterval)
	}
	if cfg.ChangePollInterval != 30*time.Second {
		t.Fatalf("poll interval = %s", cfg.ChangePollInterval)
	}
	if cfg.LoginRatePerMinute != 5 || cfg.OpsAddr != ":9090" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.RequireToken(); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", " 123:abc ")
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("DEADLINE_SCAN_INTERVAL", "1h")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "3")
	t.Setenv("TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramToken != "123:abc" || cfg.RequireToken() != nil {
		t.Fatalf("token = %q", cfg.TelegramToken)
	}
	if cfg.StoreBackend != BackendMongo || cfg.DeadlineScanInterval != time.Hour || cfg.LoginRatePerMinute != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Jakarta" {
		t.Fatalf("location = %v, %v", loc, err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":   {"STORE_BACKEND": "postgres"},
		"mongo without uri": {"STORE_BACKEND": "mongo", "MONGO_URI": ""},
		"bad timezone":      {"TIMEZONE": "Mars/Olympus"},
		"negative poll":     {"CHANGE_POLL_INTERVAL": "-1s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
