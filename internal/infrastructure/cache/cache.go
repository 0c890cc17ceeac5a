// Package cache provides the key/value cache used for computed read models
// and the Redis connection shared with the token blacklist.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheClosed is returned by operations on a closed in-memory cache
var ErrCacheClosed = errors.New("cache is closed")

// Cache stores JSON-serialisable values under string keys with a TTL
type Cache interface {
	// Get decodes the cached value into dest. The bool reports a hit.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value for ttl
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes keys; missing keys are ignored
	Delete(ctx context.Context, keys ...string) error
}
