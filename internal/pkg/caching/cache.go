package caching

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

const (
	LOCAL_CACHE_SIZE = 10000
	LOCAL_CACHE_TTL  = time.Minute
)

var ErrCacheMiss = cache.ErrCacheMiss

type ReadOnlyCache interface {
	Get(ctx context.Context, key string, target any) error
}

type Cache interface {
	ReadOnlyCache
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func UseCache[T any](ctx context.Context, cash Cache, key string, ttl time.Duration, callback func() (T, error)) (T, error) {
	return UseCacheWithRO(ctx, cash, cash, key, ttl, callback)
}

func UseCacheWithRO[T any](ctx context.Context, roCash ReadOnlyCache, cash Cache, key string, ttl time.Duration, callback func() (T, error)) (T, error) {
	var v T
	err := roCash.Get(ctx, key, &v)
	if !errors.Is(err, cache.ErrCacheMiss) {
		return v, err
	}

	v, err = callback()
	if err != nil {
		return v, err
	}

	// fire and forget
	//nolint:errcheck
	cash.Set(ctx, key, v, ttl)
	return v, nil
}

type CacheRedis struct {
	instance *cache.Cache
}

func (c *CacheRedis) Get(ctx context.Context, key string, target any) error {
	return c.instance.Get(ctx, key, target)
}

func (c *CacheRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.instance.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (c *CacheRedis) Delete(ctx context.Context, key string) error {
	err := c.instance.Delete(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	return err
}

func NewCacheRedis(client redis.UniversalClient, withLocalCache bool) (*CacheRedis, error) {
	if client == nil {
		return nil, errors.New("caching: redis client is nil")
	}

	var localCache cache.LocalCache
	if withLocalCache {
		localCache = cache.NewTinyLFU(LOCAL_CACHE_SIZE, LOCAL_CACHE_TTL)
	}
	return &CacheRedis{cache.New(&cache.Options{
		Redis:      client,
		LocalCache: localCache,
	})}, nil
}

// NewCacheLocal keeps entries in process memory only. Entries expire after ttl,
// which caps every item ttl passed to Set.
func NewCacheLocal(size int, ttl time.Duration) *CacheRedis {
	if size <= 0 {
		size = LOCAL_CACHE_SIZE
	}
	if ttl <= 0 {
		ttl = LOCAL_CACHE_TTL
	}
	return &CacheRedis{cache.New(&cache.Options{
		LocalCache: cache.NewTinyLFU(size, ttl),
	})}
}
