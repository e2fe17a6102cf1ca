package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"taskboard/internal/config"
	"taskboard/internal/dedup"
	"taskboard/internal/logger"
	"taskboard/internal/ops"
	"taskboard/internal/repository"
	"taskboard/internal/repository/mongodb"
)

// backend holds the open data sources. Users and sessions always live in
// the relational database; tasks and categories follow STORE_BACKEND.
type backend struct {
	db         *gorm.DB
	users      *repository.UserRepository
	tasks      repository.TaskStore
	categories repository.CategoryStore
	documents  *mongo.Database
	checks     map[string]ops.Check
	closers    []func()
}

func openBackend(ctx context.Context, cfg config.Config, log *logger.Logger) (*backend, error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}

	b := &backend{
		db:     db,
		users:  repository.NewUserRepository(db),
		checks: map[string]ops.Check{"database": sqlDB.PingContext},
	}
	b.closers = append(b.closers, func() { sqlDB.Close() })

	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		loc, err := cfg.Location()
		if err != nil {
			b.Close()
			return nil, err
		}
		mdb := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, mdb); err != nil {
			b.Close()
			return nil, err
		}
		b.documents = mdb
		b.tasks = mongodb.NewTaskRepository(mdb, loc)
		b.categories = mongodb.NewCategoryRepository(mdb)
		b.checks["mongo"] = pingMongo(client)
		log.Infow("using document store", "db", cfg.MongoDB)
	default:
		b.tasks = repository.NewTaskRepository(db)
		b.categories = repository.NewCategoryRepository(db)
		log.Infow("using relational store", "dsn", cfg.DatabaseURL)
	}
	return b, nil
}

// Close releases the sources in reverse order.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func pingMongo(client *mongo.Client) ops.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}

// openLedger picks Redis when REDIS_URL is set so reminders survive restarts
// and are shared between replicas; otherwise memory.
func openLedger(ctx context.Context, cfg config.Config, b *backend, log *logger.Logger) (dedup.Ledger, error) {
	if cfg.RedisURL == "" {
		log.Infow("deadline ledger in memory")
		return dedup.NewMemoryLedger(dedup.DefaultTTL), nil
	}
	ledger, err := dedup.NewRedisLedger(ctx, cfg.RedisURL, dedup.DefaultTTL)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { ledger.Close() })
	b.checks["redis"] = ledger.Ping
	log.Infow("deadline ledger in redis")
	return ledger, nil
}
