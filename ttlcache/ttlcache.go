// Package ttlcache is an in-process key-value cache with per-entry
// expiry. Eviction is lazy: expired entries are dropped on the next
// lookup, there is no background sweep. An optional single-flight
// helper collapses concurrent misses on the same key into one fetch.
package ttlcache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key builds a cache key from identity parts: parts are joined and
// whitespace runs collapse to underscores, case preserved.
func Key(parts ...string) string {
	joined := strings.Join(parts, "_")
	return strings.Join(strings.Fields(joined), "_")
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL-keyed store. The zero value is not usable; use New.
type Cache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	defaultTTL time.Duration
	now        func() time.Time
	flight     singleflight.Group
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithClock substitutes the time source, for expiry tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// New creates a Cache with the given default TTL.
func New[V any](defaultTTL time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries:    make(map[string]entry[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the value for key if present and unexpired. An expired
// entry is removed on the way out.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a Set may have raced in.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache[V]) SetTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Do returns the cached value for key, or runs fetch exactly once for
// concurrent callers of the same key, caching a successful result with
// the default TTL. Errors are not cached.
func (c *Cache[V]) Do(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	out, err, _ := c.flight.Do(key, func() (any, error) {
		// Another flight member may have populated the cache already.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return out.(V), nil
}
