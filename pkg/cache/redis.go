package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisAttempts is how often a network failure is tried before giving up.
const redisAttempts = 3

// RedisCache shares entries between processes through a Redis server.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string `toml:"url"`

	// Prefix is prepended to every key, "pedigree:" when empty.
	Prefix string `toml:"prefix"`
}

// NewRedisCache connects to the server and checks it answers.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "pedigree:"
	}

	c := &RedisCache{client: redis.NewClient(opt), prefix: prefix}
	if err := c.do(ctx, func() error { return c.client.Ping(ctx).Err() }); err != nil {
		c.client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c, nil
}

// Get retrieves a value. redis.Nil is reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.do(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value. A ttl of zero keeps the key until it is deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.do(ctx, func() error {
		return c.client.Set(ctx, c.prefix+key, data, max(ttl, 0)).Err()
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.do(ctx, func() error {
		return c.client.Del(ctx, c.prefix+key).Err()
	})
}

// Close closes the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// do runs fn, retrying network failures.
func (c *RedisCache) do(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, redisAttempts, func() error {
		err := fn()
		var netErr net.Error
		if errors.As(err, &netErr) {
			return Retryable(err)
		}
		return err
	})
}

var _ Cache = (*RedisCache)(nil)
