// Package cache provides the in-process tagged cache backing the
// cached-function factory and the invalidation endpoint.
package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-memory tagged cache. An entry is reachable by
// exactly one key but indexed under every tag it was stored with;
// invalidating any one of those tags discards the entry.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	tags  map[string]map[string]struct{} // tag -> keys
}

type cacheItem struct {
	value     interface{}
	tags      []string
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache and starts its cleanup
// goroutine.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]cacheItem),
		tags:  make(map[string]map[string]struct{}),
	}

	go c.cleanupExpired()

	return c
}

// Get retrieves a value from the cache. Expired entries read as misses.
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		return nil, false
	}

	return item.value, true
}

// Set stores a value under key, indexed by tags, expiring after ttl.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, tags []string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, exists := c.items[key]; exists {
		c.dropTagIndex(key, prev.tags)
	}

	c.items[key] = cacheItem{
		value:     value,
		tags:      tags,
		expiresAt: time.Now().Add(ttl),
	}
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}

	return nil
}

// Delete removes a single entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)
	return nil
}

// InvalidateTag removes every entry stored with tag and returns how many
// entries were purged.
func (c *MemoryCache) InvalidateTag(ctx context.Context, tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, ok := c.tags[tag]
	if !ok {
		return 0
	}

	purged := 0
	for key := range keys {
		c.remove(key)
		purged++
	}
	delete(c.tags, tag)

	return purged
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheItem)
	c.tags = make(map[string]map[string]struct{})
	return nil
}

// Len returns the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// remove deletes an entry and its tag index. Caller holds the write lock.
func (c *MemoryCache) remove(key string) {
	item, exists := c.items[key]
	if !exists {
		return
	}
	c.dropTagIndex(key, item.tags)
	delete(c.items, key)
}

// dropTagIndex unlinks key from each tag's index. Caller holds the write lock.
func (c *MemoryCache) dropTagIndex(key string, tags []string) {
	for _, tag := range tags {
		if keys, ok := c.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
}

// cleanupExpired periodically removes expired items.
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, item := range c.items {
			if now.After(item.expiresAt) {
				c.remove(key)
			}
		}
		c.mu.Unlock()
	}
}
