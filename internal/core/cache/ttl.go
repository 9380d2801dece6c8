package cache

import (
	"time"
)

// TTL is a caller-owned cache value with time-based invalidation.
// There is no package level state: whoever needs caching holds a TTL.
// A TTL is not safe for concurrent use; callers serialize access.
type TTL[K comparable, V any] struct {
	entries       map[K]V
	lastRefreshed time.Time
	ttl           time.Duration
	now           func() time.Time
}

// NewTTL creates an empty, invalid cache. A ttl of 0 means entries never expire
// once refreshed.
func NewTTL[K comparable, V any](ttl time.Duration, now func() time.Time) *TTL[K, V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[K, V]{
		entries: make(map[K]V),
		ttl:     ttl,
		now:     now,
	}
}

// IsValid reports whether the cache has been refreshed and has not expired.
func (c *TTL[K, V]) IsValid() bool {
	if c.lastRefreshed.IsZero() {
		return false
	}
	if c.ttl == 0 {
		return true
	}
	return c.now().Sub(c.lastRefreshed) < c.ttl
}

// Get returns the value for key while the cache is valid.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if !c.IsValid() {
		return zero, false
	}
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a value and marks the cache as refreshed now.
func (c *TTL[K, V]) Put(key K, value V) {
	if !c.IsValid() {
		c.entries = make(map[K]V)
	}
	c.entries[key] = value
	c.lastRefreshed = c.now()
}

// Invalidate drops every entry.
func (c *TTL[K, V]) Invalidate() {
	c.entries = make(map[K]V)
	c.lastRefreshed = time.Time{}
}

// LastRefreshed returns when the cache was last written, zero if never.
func (c *TTL[K, V]) LastRefreshed() time.Time {
	return c.lastRefreshed
}

// Len returns the number of live entries.
func (c *TTL[K, V]) Len() int {
	if !c.IsValid() {
		return 0
	}
	return len(c.entries)
}
