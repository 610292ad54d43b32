// Package cache provides a generic bounded key-value store with TTL
// expiry and least-recently-used eviction. One implementation serves
// every cache purpose in the engine via composition.
//
// The LRU core is hashicorp's non-locking simplelru; the cache owns a
// single mutex so that get+recency-refresh and put+evict execute as
// atomic units with respect to concurrent callers. A read that mutates
// recency ordering is itself a write.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultCapacity is used when the configured capacity is not positive.
const DefaultCapacity = 1000

// DefaultTTL is used when the configured TTL is not positive.
const DefaultTTL = 24 * time.Hour

// entry wraps a cached value with its creation timestamp. TTL is measured
// from creation; reads refresh recency ordering but never the TTL clock.
type entry[V any] struct {
	Value     V
	CreatedAt time.Time
}

// Cache is a bounded, time-expiring LRU cache.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[K, *entry[V]]
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock overrides the time source. Used by tests to exercise TTL
// behavior without sleeping.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.now = now
	}
}

// New creates a cache with the given capacity and TTL.
// Non-positive values fall back to DefaultCapacity and DefaultTTL.
func New[K comparable, V any](capacity int, ttl time.Duration, opts ...Option[K, V]) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	// simplelru only errors on a non-positive size, which is guarded above.
	lru, _ := simplelru.NewLRU[K, *entry[V]](capacity, nil)

	c := &Cache[K, V]{
		lru:      lru,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. A hit refreshes the entry's
// recency position. An entry past its TTL is evicted and reported as a
// miss; expiry is measured from creation time, not last access.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		return zero, false
	}
	return e.Value, true
}

// Put inserts or overwrites the value for key with a fresh creation
// timestamp. When the cache is at capacity the least-recently-used entry
// is evicted, independent of TTL.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, &entry[V]{Value: value, CreatedAt: c.now()})
}

// EvictExpired removes every entry whose TTL has elapsed and returns the
// number removed. Intended for background maintenance; the hot read path
// relies on the lazy per-key check in Get.
func (c *Cache[K, V]) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if c.expired(e) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
}

// Len returns the current number of entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// TTL returns the configured entry time-to-live.
func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}

// expired reports whether the entry's TTL has elapsed. Callers hold c.mu.
func (c *Cache[K, V]) expired(e *entry[V]) bool {
	return c.now().Sub(e.CreatedAt) > c.ttl
}
