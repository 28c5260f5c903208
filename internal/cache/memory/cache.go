// Package memory provides an in-process implementation of repository.Cache.
// Used for single-node deployments without Redis and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prn-tf/shelfmark/internal/repository"
)

// entry is a cached value with an optional expiry.
type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache implements repository.Cache with a mutex-guarded map.
// Expired entries are dropped lazily on access.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, repository.ErrCacheMiss
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, repository.ErrCacheMiss
	}

	// Copy so callers can't mutate the cached value.
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

// Set stores a value with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes values by key.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure Cache implements repository.Cache.
var _ repository.Cache = (*Cache)(nil)
