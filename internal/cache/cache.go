// Package cache is a small in-memory TTL cache. The enricher uses it to
// remember fetched article pages for the length of a run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

type CacheItem struct {
	Value     any
	ExpiresAt time.Time
}

type Cache struct {
	mu    sync.RWMutex
	items map[string]CacheItem
	ttl   time.Duration
	now   func() time.Time
}

// New returns a cache whose entries live for ttl. A ttl of zero keeps
// entries until Purge.
func New(ttl time.Duration) *Cache {
	return &Cache{
		items: make(map[string]CacheItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := CacheItem{Value: value}
	if c.ttl > 0 {
		item.ExpiresAt = c.now().Add(c.ttl)
	}
	c.items[key] = item
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	if !item.ExpiresAt.IsZero() && c.now().After(item.ExpiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}

	return item.Value, true
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops expired entries, or every entry when ttl is zero.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if item.ExpiresAt.IsZero() || now.After(item.ExpiresAt) {
			delete(c.items, key)
		}
	}
}

// GenerateKey hashes parts into a fixed-size key.
func GenerateKey(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
