// Package cache implements C8: a two-tier result cache for
// AICommandResults keyed by a stable hash of the command's
// cache-relevant fields. L1 is an in-process LRU-by-recency map with a
// size cap and per-entry TTL, grounded on orchestration.SimpleCache. L2
// is an optional Redis-backed tier, grounded on core/redis_client.go,
// with a reverse tag index for InvalidateByTags. Concurrent misses on
// the same key collapse via golang.org/x/sync/singleflight.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// l1Stats mirrors orchestration.CacheStats, trimmed to what C8's
// operations report.
type l1Stats struct {
	Hits, Misses, Evictions int64
}

type l1Entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	tags      []string
	elem      *list.Element
}

// L1 is an in-process cache ordered by recency (front = most recently
// used), evicting the back of the list once MaxEntries is exceeded.
type L1 struct {
	mu         sync.Mutex
	items      map[string]*l1Entry
	order      *list.List
	maxEntries int
	maxBytes   int64
	usedBytes  int64
	stats      l1Stats
}

// NewL1 creates an L1 cache capped at maxEntries items and maxBytes of
// serialized value data.
func NewL1(maxEntries int, maxBytes int64) *L1 {
	return &L1{
		items:      make(map[string]*l1Entry),
		order:      list.New(),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
	}
}

// Get returns the cached value for key if present and unexpired,
// promoting it to most-recently-used.
func (c *L1) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(entry)
		c.stats.Misses++
		return nil, false
	}

	c.order.MoveToFront(entry.elem)
	c.stats.Hits++
	return entry.value, true
}

// Set inserts or replaces key with value, tagged for batch invalidation,
// expiring after ttl.
func (c *L1) Set(key string, value []byte, ttl time.Duration, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[key]; ok {
		c.removeLocked(existing)
	}

	for c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldestLocked()
	}
	for c.maxBytes > 0 && c.usedBytes+int64(len(value)) > c.maxBytes && c.order.Len() > 0 {
		c.evictOldestLocked()
	}

	elem := c.order.PushFront(key)
	c.items[key] = &l1Entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
		tags:      tags,
		elem:      elem,
	}
	c.usedBytes += int64(len(value))
}

// InvalidateByTags removes every entry carrying any of the given tags.
func (c *L1) InvalidateByTags(tags ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	var removed int
	for _, entry := range c.items {
		for _, t := range entry.tags {
			if _, ok := want[t]; ok {
				c.removeLocked(entry)
				removed++
				break
			}
		}
	}
	return removed
}

func (c *L1) evictOldestLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	key := back.Value.(string)
	if entry, ok := c.items[key]; ok {
		c.removeLocked(entry)
		c.stats.Evictions++
	}
}

func (c *L1) removeLocked(entry *l1Entry) {
	c.order.Remove(entry.elem)
	delete(c.items, entry.key)
	c.usedBytes -= int64(len(entry.value))
}

// Stats returns a snapshot of hit/miss/eviction counters.
func (c *L1) Stats() (hits, misses, evictions int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Hits, c.stats.Misses, c.stats.Evictions, len(c.items)
}
