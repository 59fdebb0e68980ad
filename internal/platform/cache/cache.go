// Package cache is a thin redis wrapper for derived read models. The
// inventory summaries it holds are rebuilt from blood unit rows on every
// mutation, so a lost cache entry only costs a database read.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when the key is absent or the cache is disabled.
var ErrMiss = errors.New("cache miss")

// Cache is nil-safe: a nil *Cache behaves as a disabled cache, so callers
// do not branch on whether REDIS_URL was configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// GetJSON unmarshals the cached value for key into dest, returning ErrMiss
// when absent or disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if c == nil {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cached %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value under key with the configured TTL. No-op when disabled.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. No-op when disabled.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the redis connection. No-op when disabled.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
