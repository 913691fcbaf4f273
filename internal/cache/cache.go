// Package cache is the short-lived query cache in front of the mall tables.
// Entries are keyed by (operation, parameters), expire after a freshness
// window, and concurrent loads of the same key are collapsed into one.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/morpheus-mall/mall-backend/internal/metrics"
)

const keyPrefix = "morpheus:q:"

type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	group  singleflight.Group
}

// New returns a cache over client. A nil client or a zero ttl yields a cache
// that always loads through.
func New(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// NewRedisClient builds the client used by the cache.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

// Key derives the storage key for an operation and its parameters.
func Key(operation string, params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode cache params for %s: %w", operation, err)
	}
	sum := sha256.Sum256(raw)
	return keyPrefix + operation + ":" + hex.EncodeToString(sum[:12]), nil
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Remember returns the cached value for (operation, params) or runs load,
// stores its result and returns it. Redis failures are logged and the load
// runs uncached; load errors are never cached.
func Remember[T any](ctx context.Context, c *Cache, operation string, params any, load func(context.Context) (T, error)) (T, error) {
	if !c.enabled() {
		return load(ctx)
	}

	logger := zerolog.Ctx(ctx)
	key, err := Key(operation, params)
	if err != nil {
		return load(ctx)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.ObserveCache(operation, "hit")
			return cached, nil
		}
		logger.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	case errors.Is(err, redis.Nil):
		metrics.ObserveCache(operation, "miss")
	default:
		metrics.ObserveCache(operation, "error")
		logger.Warn().Err(err).Str("operation", operation).Msg("cache read failed, loading uncached")
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		value, loadErr := load(loadCtx)
		if loadErr != nil {
			return value, loadErr
		}
		if encoded, encErr := json.Marshal(value); encErr == nil {
			if setErr := c.client.Set(loadCtx, key, encoded, c.ttl).Err(); setErr != nil {
				logger.Warn().Err(setErr).Str("operation", operation).Msg("cache write failed")
			}
		}
		return value, nil
	})
	if shared {
		logger.Debug().Str("operation", operation).Msg("joined in-flight load")
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// InvalidateOperation drops every cached entry of an operation.
func (c *Cache) InvalidateOperation(ctx context.Context, operation string) (int, error) {
	if !c.enabled() {
		return 0, nil
	}

	var (
		cursor  uint64
		removed int
	)
	pattern := keyPrefix + operation + ":*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("delete cached %s entries: %w", operation, err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
