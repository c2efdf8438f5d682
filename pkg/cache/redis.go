package cache

import (
	"context"
	"time"

	"adam-store/backend/pkg/config"

	"github.com/redis/go-redis/v9"
)

// Client is a thin wrapper around the Redis client used for cache-aside
// lookups. A nil *Client is valid: every operation becomes a no-op miss,
// so services work unchanged without Redis.
type Client struct {
	client *redis.Client
}

// New creates a Redis client from configuration. Returns nil when Redis
// is disabled.
func New(cfg *config.Config) *Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}),
	}
}

// Set stores a value with an expiration
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get returns the value for a key, or an error on miss
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c == nil {
		return "", redis.Nil
	}
	return c.client.Get(ctx, key).Result()
}

// Del removes a key
func (c *Client) Del(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}
