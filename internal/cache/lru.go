// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package cache provides a bounded, expiring in-memory cache.
package cache

import (
	"sync"
	"time"
)

type node[K comparable, V any] struct {
	key        K
	value      V
	expiresAt  time.Time
	prev, next *node[K, V]
}

// LRU is a thread-safe least recently used cache whose entries also expire
// after a fixed TTL. Expired entries are dropped lazily on access.
//
// Entries live in a doubly linked list between two sentinels: head.next is
// the most recently used, tail.prev the least.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[K]*node[K, V]
	head     *node[K, V]
	tail     *node[K, V]
	now      func() time.Time

	hits   int64
	misses int64
}

// NewLRU creates a cache. capacity <= 0 means 10000 entries; ttl <= 0 means
// five minutes.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &LRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*node[K, V], capacity),
		head:     &node[K, V]{},
		tail:     &node[K, V]{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// WithClock replaces the time source. Intended for tests.
func (c *LRU[K, V]) WithClock(now func() time.Time) *LRU[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Get returns the live value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	n, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.now().After(n.expiresAt) {
		c.unlink(n)
		c.misses++
		return zero, false
	}
	c.moveToFront(n)
	c.hits++
	return n.value, true
}

// Add inserts or refreshes key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if n, ok := c.items[key]; ok {
		n.value = value
		n.expiresAt = expiresAt
		c.moveToFront(n)
		return
	}

	n := &node[K, V]{key: key, value: value, expiresAt: expiresAt}
	c.pushFront(n)
	c.items[key] = n
	for len(c.items) > c.capacity {
		c.unlink(c.tail.prev)
	}
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if ok {
		c.unlink(n)
	}
	return ok
}

// Len returns the number of stored entries, including expired ones not yet
// dropped.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counts.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// List helpers; callers hold mu.

func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	c.pushFront(n)
}

func (c *LRU[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	delete(c.items, n.key)
}
