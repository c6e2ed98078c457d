package cache

import (
	"context"
	"time"

	"github.com/matzehuels/rustcap/pkg/observability"
)

// NullCache stores nothing. It backs --no-cache runs, where every metadata
// snapshot is recomputed; lookups are still reported as misses so the cache
// hooks see the same traffic either way.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get reports a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	observability.Cache().OnCacheMiss(ctx, keyType(key))
	return nil, false, nil
}

// Set discards data.
func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete has nothing to remove.
func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
