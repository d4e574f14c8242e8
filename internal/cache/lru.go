// Package cache holds the bounded recency list backing the department
// course cache. The structure itself is not goroutine safe; the owning
// service serializes access.
package cache

import "container/list"

type lruItem[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a capacity-bounded map with least-recently-used eviction.
// Both reads and writes refresh an entry's recency.
type LRU[K comparable, V any] struct {
	capacity int
	order    *list.List
	items    map[K]*list.Element
}

// NewLRU creates an LRU holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*lruItem[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Peek returns the value for key without touching recency. Used to serve
// stale entries on fetch failure without promoting them.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		return elem.Value.(*lruItem[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces the value for key, marks it most recently used,
// and evicts least-recently-used entries until the count fits capacity.
func (c *LRU[K, V]) Put(key K, value V) {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*lruItem[K, V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&lruItem[K, V]{key: key, value: value})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruItem[K, V]).key)
	}
}

// Len reports the current entry count.
func (c *LRU[K, V]) Len() int {
	return c.order.Len()
}
