package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "coderr:cache:"

// NewRedisClient connects to Redis and verifies the connection with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// RedisCache implements Cache on top of Redis strings holding JSON
type RedisCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisCache creates a cache using an existing client
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, keyPrefix: defaultKeyPrefix}
}

// Get decodes the cached value into dest
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %q: %w", key, err)
	}
	return true, nil
}

// Set stores the JSON encoding of value with a TTL
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.keyPrefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

var _ Cache = (*RedisCache)(nil)
