// Package dedup remembers which deadline notifications were already
// scheduled so repeated snapshots of the same day do not repeat them.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL keeps a key long enough to cover the day it was issued for.
const DefaultTTL = 48 * time.Hour

// Ledger records scheduling keys.
type Ledger interface {
	// Claim records key and reports whether it was new.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a later Claim succeeds again.
	Release(ctx context.Context, key string) error
}

// Key builds the scheduling key of a task on a day.
func Key(taskID, day string) string {
	return fmt.Sprintf("%s:%s", taskID, day)
}

// MemoryLedger is an in-process Ledger.
type MemoryLedger struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]time.Time
}

func NewMemoryLedger(ttl time.Duration) *MemoryLedger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryLedger{ttl: ttl, now: time.Now, keys: make(map[string]time.Time)}
}

func (l *MemoryLedger) Claim(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, expires := range l.keys {
		if now.After(expires) {
			delete(l.keys, k)
		}
	}
	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	l.keys[key] = now.Add(l.ttl)
	return true, nil
}

func (l *MemoryLedger) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, key)
	return nil
}

// RedisLedger shares keys between processes through SETNX.
type RedisLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLedger connects to redisURL and verifies the connection.
func NewRedisLedger(ctx context.Context, redisURL string, ttl time.Duration) (*RedisLedger, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLedger{client: client, prefix: "taskboard:deadline:", ttl: ttl}, nil
}

func (l *RedisLedger) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+key, 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (l *RedisLedger) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection, for readiness probes.
func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLedger) Close() error {
	return l.client.Close()
}
