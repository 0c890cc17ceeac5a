package cache

import (
	"context"
	"fmt"

	"github.com/coderr/backend/internal/infrastructure/auth"
	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends bundles the Redis-or-memory implementations sharing one connection
type Backends struct {
	Cache     Cache
	Blacklist auth.TokenBlacklist
	closers   []func() error
}

// Close releases the Redis client or stops the in-memory sweeper
func (b *Backends) Close() error {
	var firstErr error
	for _, c := range b.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Factory creates cache and blacklist backends from configuration
type Factory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption configures the Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to in-memory backends.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new backend factory
func NewFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns Redis backends when Redis is enabled and reachable,
// otherwise in-memory ones (unless fallback is disabled).
func (f *Factory) Create(ctx context.Context) (*Backends, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory cache and token blacklist")
		return f.inMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis cache and token blacklist", zap.String("addr", f.redisConfig.Addr()))
		return FromRedisClient(client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory cache and token blacklist. "+
		"Logouts are not shared between instances.",
		zap.Error(err),
	)
	return f.inMemory(), nil
}

// FromRedisClient wraps an already connected client
func FromRedisClient(client *redis.Client) *Backends {
	return &Backends{
		Cache:     NewRedisCache(client),
		Blacklist: auth.NewRedisTokenBlacklist(client),
		closers:   []func() error{client.Close},
	}
}

func (f *Factory) inMemory() *Backends {
	mem := NewInMemoryCache(f.cacheConfig.StatsTTL)
	return &Backends{
		Cache:     mem,
		Blacklist: auth.NewInMemoryTokenBlacklist(),
		closers:   []func() error{mem.Close},
	}
}
