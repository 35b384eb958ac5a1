// AngelaMos | 2026
// cache.go

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// ProductListingPrefix namespaces cached product listings. Any catalog
// write clears every key under it.
const ProductListingPrefix = "products:"

// JSONCache stores JSON encoded values keyed by string. A nil *JSONCache is a
// valid disabled cache: reads miss and writes are dropped.
type JSONCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewJSONCache(client redis.Cmdable, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, ttl: ttl}
}

// Get reports whether key was present and decoded into dst.
func (c *JSONCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix using SCAN so large
// keyspaces never block the server.
func (c *JSONCache) DeletePrefix(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("cache scan %s: %w", prefix, err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete %s: %w", prefix, err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// GetOrSet returns the cached value for key or loads, stores and returns a
// fresh one. Cache failures degrade to calling load directly.
func GetOrSet[T any](
	ctx context.Context,
	c *JSONCache,
	key string,
	load func(context.Context) (T, error),
) (T, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		Logger(ctx).WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}

	fresh, err := load(ctx)
	if err != nil {
		return fresh, err
	}

	if err := c.Set(ctx, key, fresh); err != nil {
		Logger(ctx).WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return fresh, nil
}
