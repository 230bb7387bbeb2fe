// Package cache provides the time-bounded cache used to avoid redundant reads
// from the remote store, plus CacheRepository adapters over it and over Redis.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is applied when Set is called with a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// Entry is a cached value with its write time and expiry.
type Entry[V any] struct {
	Data      V
	Timestamp time.Time
	Expiry    time.Time
}

// TTL is a key/value store with per-entry expiry. Expired entries are removed
// lazily on the next Get or Has; there is no background sweep and no size bound.
type TTL[V any] struct {
	mu      sync.Mutex
	entries map[string]Entry[V]
	now     func() time.Time
}

// NewTTL creates an empty cache. A nil clock means time.Now.
func NewTTL[V any](now func() time.Time) *TTL[V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[V]{
		entries: make(map[string]Entry[V]),
		now:     now,
	}
}

// Set stores data under key, replacing any existing entry.
func (c *TTL[V]) Set(key string, data V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = Entry[V]{
		Data:      data,
		Timestamp: now,
		Expiry:    now.Add(ttl),
	}
}

// Get returns the value for key if it has not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.fresh(key)
	if !ok {
		var zero V
		return zero, false
	}
	return entry.Data, true
}

// Has reports whether key holds a fresh value.
func (c *TTL[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.fresh(key)
	return ok
}

// Delete removes a single key.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Invalidate clears everything when pattern is empty, otherwise every key
// containing pattern as a substring.
func (c *TTL[V]) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		n := len(c.entries)
		c.entries = make(map[string]Entry[V])
		return n
	}

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// fresh must be called with mu held.
func (c *TTL[V]) fresh(key string) (Entry[V], bool) {
	entry, ok := c.entries[key]
	if !ok {
		return entry, false
	}
	if c.now().After(entry.Expiry) {
		delete(c.entries, key)
		return entry, false
	}
	return entry, true
}
