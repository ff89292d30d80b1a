// Package cache is a small in-memory key-value store with optional expiry. It is
// used for backend auth tokens and holds nothing durable.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

type Cache struct {
	values map[string]entry
	mutex  sync.RWMutex
	now    func() time.Time
}

func New() *Cache {
	return &Cache{
		values: map[string]entry{},
		now:    time.Now,
	}
}

// Get returns "" for missing and expired keys.
func (c *Cache) Get(key string) string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	e, ok := c.values[key]
	if !ok {
		return ""
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		return ""
	}
	return e.value
}

// Set stores a value that never expires.
func (c *Cache) Set(key string, value string) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores a value that expires after ttl; ttl <= 0 means never.
func (c *Cache) SetWithTTL(key string, value string, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.values[key] = e
}

func (c *Cache) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.values, key)
}
