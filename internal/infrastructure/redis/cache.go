package redis

import (
	"context"
	"errors"
	"time"

	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

var _ ports.Cache = (*RedisCache)(nil)

// RedisCache implements ports.Cache on a Redis client. Keys are namespaced
// under prefix so several caches can share one database.
type RedisCache struct {
	r      redis.Cmdable
	prefix string
}

func NewRedisCache(r redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{r: r, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.r.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value. A non-positive ttl keeps the key until deleted.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.r.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.r.Del(ctx, c.key(key)).Err()
}
