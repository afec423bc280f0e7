// ABOUTME: Bounded insertion-ordered fingerprint cache for dedup decisions
// ABOUTME: FIFO eviction once the fixed maximum is exceeded, explicit reset for tests

package dedupe

import (
	"sync"
)

// DefaultMaxEntries is the fixed cache bound.
const DefaultMaxEntries = 1000

// Cache is a bounded set of record fingerprints with FIFO eviction.
//
// The bound is recency-independent: once full, the oldest-inserted
// fingerprint is evicted regardless of how often it was looked up.
// All operations are safe for concurrent use; the check-insert-evict
// sequence is atomic under one lock.
type Cache struct {
	mu    sync.Mutex
	max   int
	seen  map[string]struct{}
	order []string
}

// NewCache creates a cache bounded to max fingerprints. A non-positive
// max uses DefaultMaxEntries.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Cache{
		max:  max,
		seen: make(map[string]struct{}, max),
	}
}

// CheckAndAdd reports whether the fingerprint is new, inserting it if
// so. Inserting beyond the bound evicts the oldest fingerprint.
func (c *Cache) CheckAndAdd(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.seen[fingerprint]; dup {
		return false
	}

	c.seen[fingerprint] = struct{}{}
	c.order = append(c.order, fingerprint)

	if len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}
	return true
}

// Contains reports whether the fingerprint is currently cached.
func (c *Cache) Contains(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[fingerprint]
	return ok
}

// Len returns the number of cached fingerprints.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Reset clears all fingerprints. Test-isolation hook.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[string]struct{}, c.max)
	c.order = nil
}
