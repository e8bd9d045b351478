// Package cache provides the small TTL key-value store used for aggregate
// statistics. It is injected where needed; writers invalidate by key through
// the model observers.
package cache

import (
	"sync"
	"time"
)

// Cache is the port the rest of the application depends on.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Invalidate(key string)
}

type entry struct {
	value     any
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func New() Cache {
	return &memoryCache{entries: make(map[string]entry)}
}

func (c *memoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.Invalidate(key)
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *memoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
