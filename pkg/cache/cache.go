// Package cache stores byte blobs under string keys with optional expiry.
//
// rustcap caches one thing: the output of `cargo metadata` for a given
// upstream commit and workspace directory. Resolving the rustc workspace takes
// long enough that re-running `plan` after a failed publish is noticeably
// faster with it.
//
// Two implementations are provided:
//   - [FileCache]: JSON entries under a directory, used by the CLI
//   - [NullCache]: never stores anything, used for --no-cache and tests
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a key-value store for opaque data.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the data for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// MetadataKey returns the key for a cargo metadata snapshot of dir at commit.
func MetadataKey(commit, dir string) string {
	return hashKey("metadata", commit, dir)
}

// keyType returns the namespace part of a key built by hashKey.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
