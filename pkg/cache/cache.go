// Package cache stores finished layouts so repeated requests skip the
// alignment and refinement work.
//
// # Backends
//
//   - [FileCache] keeps one JSON file per entry under a directory, for the CLI
//   - [MemoryCache] is a bounded in-process LRU that lives as long as one
//     command, for batch runs that repeat pedigrees
//   - [RedisCache] shares entries between processes through Redis
//   - [NullCache] stores nothing, for --no-cache
//
// All backends are safe for concurrent use.
//
// # Keys
//
// A [Keyer] turns a pedigree hash and the layout options into a key, so a
// change to either yields a different entry. [ScopedKeyer] prefixes every
// key for callers that share one backend between several namespaces.
package cache

import (
	"context"
	"time"
)

// DefaultLayoutTTL is how long a cached layout stays valid.
const DefaultLayoutTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}
