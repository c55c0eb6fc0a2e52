// Package redis implements cache.Cache on top of go-redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/skill-matcher/internal/cache"
	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	// URL is either a redis:// URL or a bare host:port address.
	URL      string
	Password string
	DB       int
}

type Cache struct {
	client *redis.Client
}

// New creates a Redis-backed cache. It does not contact the server; use Ping.
func New(opts Options) (*Cache, error) {
	clientOpts, err := clientOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{client: redis.NewClient(clientOpts)}, nil
}

func clientOptions(opts Options) (*redis.Options, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("redis url is empty")
	}

	if strings.Contains(opts.URL, "://") {
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		if opts.Password != "" {
			parsed.Password = opts.Password
		}
		if opts.DB != 0 {
			parsed.DB = opts.DB
		}
		return parsed, nil
	}

	return &redis.Options{
		Addr:     opts.URL,
		Password: opts.Password,
		DB:       opts.DB,
	}, nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
