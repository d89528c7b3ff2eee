// Package cache provides a simulation response cache keyed by a hash of the
// assembled request body, with Redis and in-memory implementations.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

// Cache stores upstream simulation responses for identical request bodies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives the cache key for an assembled request body.
func Key(body []byte) string {
	return constants.CacheKeyPrefix + strconv.FormatUint(xxhash.Sum64(body), 16)
}

// MemoryCache is a map-backed cache used in tests and when no Redis address
// is configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// Now is the clock used for expiry; tests override it.
	Now func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), Now: time.Now}
}

// Get returns the cached value when present and unexpired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores a value; a zero TTL means no expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.Now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}
