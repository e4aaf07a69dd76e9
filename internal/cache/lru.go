// Package cache provides a bounded least-recently-used cache.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a fixed-capacity cache with least-recently-used eviction.
// It is safe for concurrent use.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	stats    Stats
}

// Stats counts cache activity since creation or the last Clear.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

type entry[V any] struct {
	key   string
	value V
}

// NewLRU creates a cache holding at most capacity entries.
// A non-positive capacity defaults to 100.
func NewLRU[V any](capacity int) *LRU[V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key and promotes it to most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		c.stats.Hits++
		return elem.Value.(*entry[V]).value, true
	}
	c.stats.Misses++
	var zero V
	return zero, false
}

// Set stores value under key. At capacity, the least recently used entry
// is evicted before the new one is inserted.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry[V]).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *LRU[V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	delete(c.items, oldest.Value.(*entry[V]).key)
	c.order.Remove(oldest)
	c.stats.Evictions++
}

// Clear removes all entries and resets the statistics.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.stats = Stats{}
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *LRU[V]) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the activity counters.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
