// Package cache stores computed layouts and exported artifacts.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the API server and [NullCache] when caching is disabled. Keys come
// from a [Keyer], which hashes the graph and every option that changes the
// result, so a hit is always byte-for-byte what a fresh run would produce.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// failed, not that the key is absent. A ttl of zero never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
