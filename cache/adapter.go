package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/cache/local"
	cacheredis "github.com/Regyyyy/gamify-oss-app-sub000/cache/redis"
)

// Cache is the key/value store shared by login sessions, the cached
// leaderboard and background task locks. Get returns a not-found error for
// missing or expired keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CacheConfig holds configuration for both Redis and LocalCache.
type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

// NewCache returns a Cache backed by Redis if RedisAddr is set,
// otherwise returns an in-process LocalCache.
func NewCache(cfg CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		return cacheredis.NewCache(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	}
	return local.NewCache(local.Config{
		GCInterval: cfg.LocalGCInterval,
	})
}

// IsNotFound reports whether err is a cache miss from either backend.
func IsNotFound(err error) bool {
	return errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound)
}

// Guard wraps a periodic task so that at most one run starts per hold
// window across every process sharing c. A run that loses the race is
// skipped without error.
func Guard(c Cache, name string, hold time.Duration, fn func(context.Context) error) func(context.Context) error {
	key := "lock:" + name
	return func(ctx context.Context) error {
		won, err := c.SetNX(ctx, key, "1", hold)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		return fn(ctx)
	}
}
