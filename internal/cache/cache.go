package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a small read-through cache over Redis. Concurrent misses for the
// same key are collapsed into a single load via singleflight.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

// New connects a Cache to the given Redis instance.
func New(addr, password string, dbIndex int) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: dbIndex}),
	}
}

// GetOrLoad returns the cached bytes for key, loading and storing them with
// the given TTL on a miss. Redis failures fall through to the loader so the
// cache never turns a healthy store read into an error.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate drops the given keys. Errors are ignored; a stale entry expires
// with its TTL anyway.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error { return c.rdb.Close() }
