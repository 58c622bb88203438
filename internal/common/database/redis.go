// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"weekend-planner/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client    redis.Cmdable
	KeyPrefix string
	closer    func() error
}

// NewRedis creates a new Redis client. A URL takes precedence over Address.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
		MinIdleConns: 1,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	return &RedisClient{Client: rdb, KeyPrefix: cfg.KeyPrefix, closer: rdb.Close}, nil
}

// NewRedisFromCmdable wraps an existing client, e.g. a redismock or miniredis-backed one.
func NewRedisFromCmdable(client redis.Cmdable, keyPrefix string) *RedisClient {
	return &RedisClient{Client: client, KeyPrefix: keyPrefix}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

// Key joins parts under the configured prefix.
func (c *RedisClient) Key(parts ...string) string {
	key := c.KeyPrefix
	for _, p := range parts {
		if key == "" {
			key = p
			continue
		}
		key += ":" + p
	}
	return key
}
