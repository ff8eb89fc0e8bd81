// Package rd provides a Redis client behind the store seam
package rd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures redis connectivity
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RD is a redis client wrapper implementing the store seam
type RD struct {
	c *redis.Client
}

// Open creates a redis client and verifies connectivity with a short ping
func Open(ctx context.Context, cfg Config) (*RD, error) {
	c := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 10 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RD{c: c}, nil
}

// Get returns the value for key; ok=false when the key is absent
func (r *RD) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores val under key with an optional TTL in seconds (0 = no expiry)
func (r *RD) Set(ctx context.Context, key, val string, ttlSeconds int) error {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return r.c.Set(ctx, key, val, ttl).Err()
}

// Del removes keys and returns how many existed
func (r *RD) Del(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.c.Del(ctx, keys...).Result()
	return int(n), err
}

// Keys lists keys matching pattern; fine for the small keyspaces we hold
func (r *RD) Keys(ctx context.Context, pattern string) ([]string, error) {
	return r.c.Keys(ctx, pattern).Result()
}

// Ping reports readiness
func (r *RD) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Close releases the client
func (r *RD) Close() error { return r.c.Close() }
