// Package repository defines data access interfaces for Shelfmark.
package repository

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Implemented by Redis for shared deployments and by an in-process map for
// single-node setups and tests.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes values by key. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
