// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lru

import (
	"container/list"
	"sync"

	"github.com/veilnet-labs/veilclient/cache"
)

var _ cache.Cacher[struct{}, struct{}] = (*Cache[struct{}, struct{}])(nil)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a key value store with bounded size. If the size is attempted to be
// exceeded, then an element is removed from the cache before the insertion is
// done, based on evicting the least recently used value.
type Cache[K comparable, V any] struct {
	lock     sync.Mutex
	elements map[K]*list.Element
	order    *list.List
	size     int
}

// NewCache creates a new LRU cache with the given size.
func NewCache[K comparable, V any](size int) *Cache[K, V] {
	return &Cache[K, V]{
		elements: make(map[K]*list.Element),
		order:    list.New(),
		size:     max(size, 1),
	}
}

func (c *Cache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if elt, ok := c.elements[key]; ok {
		elt.Value = entry[K, V]{key: key, value: value}
		c.order.MoveToFront(elt)
		return
	}

	if c.order.Len() == c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.elements, oldest.Value.(entry[K, V]).key)
	}
	c.elements[key] = c.order.PushFront(entry[K, V]{key: key, value: value})
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	elt, ok := c.elements[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elt) // Mark [key] as MRU.
	return elt.Value.(entry[K, V]).value, true
}

func (c *Cache[K, _]) Evict(key K) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if elt, ok := c.elements[key]; ok {
		c.order.Remove(elt)
		delete(c.elements, key)
	}
}

func (c *Cache[K, V]) Flush() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.elements = make(map[K]*list.Element)
	c.order.Init()
}

func (c *Cache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.order.Len()
}
