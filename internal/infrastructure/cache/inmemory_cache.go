package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryCache implements Cache with a map guarded by a mutex.
// A background goroutine evicts expired entries until Close is called.
type InMemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCache creates an in-memory cache that sweeps expired entries every interval
func NewInMemoryCache(sweepInterval time.Duration) *InMemoryCache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	c := &InMemoryCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop(sweepInterval)
	return c
}

// Get decodes a live entry into dest
func (c *InMemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(e.payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the JSON encoding of value
func (c *InMemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.stopChan:
		return ErrCacheClosed
	default:
	}
	c.entries[key] = entry{payload: payload, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes keys
func (c *InMemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

// Len returns the number of stored entries, expired or not
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweeper. Safe to call multiple times.
func (c *InMemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ Cache = (*InMemoryCache)(nil)
