package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a degraded-mode snapshot is kept
const DefaultCacheTTL = 7 * 24 * time.Hour

// Cache is the Redis-backed degraded-mode cache
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a cache whose entries expire after ttl (0 = DefaultCacheTTL)
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns a cached value. Any Redis error is treated as a miss: the cache
// is only consulted when primary storage already failed.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, CacheKey(key)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores a value
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, CacheKey(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

// Flush removes all cached snapshots
func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefixCache+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
