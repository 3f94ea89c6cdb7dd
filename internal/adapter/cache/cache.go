// Package cache implements the read-through cache port on Redis.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// Redis implements domain.Cache. Cache failures never fail the request: a
// broken Redis degrades to computing every time, with a logged warning.
type Redis struct {
	rdb *redis.Client
}

// New constructs a cache over an existing Redis client.
func New(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// GetOrCompute returns the cached value for key, or runs compute and stores
// the result with the given TTL. Only successful computes are cached.
func (c *Redis) GetOrCompute(ctx domain.Context, key string, ttl time.Duration, compute func(domain.Context) (string, error)) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		slog.Warn("cache read failed, computing directly", slog.String("key", key), slog.Any("error", err))
	}

	val, err = compute(ctx)
	if err != nil {
		return "", err
	}
	if setErr := c.rdb.Set(ctx, key, val, ttl).Err(); setErr != nil {
		slog.Warn("cache write failed", slog.String("key", key), slog.Any("error", setErr))
	}
	return val, nil
}

// Invalidate removes an exact key, or every key under a prefix when pattern
// ends with "*". Scanning is incremental so a large keyspace does not block
// Redis.
func (c *Redis) Invalidate(ctx domain.Context, pattern string) error {
	if !strings.HasSuffix(pattern, "*") {
		if err := c.rdb.Del(ctx, pattern).Err(); err != nil {
			return fmt.Errorf("op=cache.Invalidate: %w", err)
		}
		return nil
	}

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("op=cache.Invalidate: del %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("op=cache.Invalidate: scan: %w", err)
	}
	return nil
}
