package cache

import (
	"sync"
	"time"
)

// Cache is a thread-safe in-memory key-value store with optional TTL and tags.
type Cache struct {
	mu       sync.Mutex
	items    map[string]cacheItem
	tagIndex map[string]map[string]struct{}
	now      func() time.Time
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new, empty Cache.
func NewCache() *Cache {
	return &Cache{
		items:    make(map[string]cacheItem),
		tagIndex: make(map[string]map[string]struct{}),
		now:      time.Now,
	}
}

// cacheItem holds a value and its expiration time; zero means no expiration.
type cacheItem struct {
	Value     any
	ExpiresAt time.Time
}

// Set stores value for key. ttl <= 0 never expires.
func (c *Cache) Set(key string, value any, ttl time.Duration, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := cacheItem{Value: value}
	if ttl > 0 {
		item.ExpiresAt = c.now().Add(ttl)
	}
	c.items[key] = item
	for _, tag := range tags {
		keys, ok := c.tagIndex[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tagIndex[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !item.ExpiresAt.IsZero() && c.now().After(item.ExpiresAt) {
		c.deleteLocked(key)
		return nil, false
	}
	return item.Value, true
}

// GetOrDefault returns the value for key, or def when missing.
func (c *Cache) GetOrDefault(key string, def any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Delete removes key and its tag memberships.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	c.deleteLocked(key)
	c.mu.Unlock()
}

// DeleteMany removes several keys.
func (c *Cache) DeleteMany(keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		c.deleteLocked(key)
	}
	c.mu.Unlock()
}

// GetKeysByTag returns the keys currently assigned to tag.
func (c *Cache) GetKeysByTag(tag string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.tagIndex[tag]))
	for key := range c.tagIndex[tag] {
		keys = append(keys, key)
	}
	return keys
}

// DeleteByTag deletes every entry assigned to tag.
func (c *Cache) DeleteByTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.tagIndex[tag] {
		c.deleteLocked(key)
	}
	delete(c.tagIndex, tag)
}

// Flush empties the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.items = make(map[string]cacheItem)
	c.tagIndex = make(map[string]map[string]struct{})
	c.mu.Unlock()
}

func (c *Cache) deleteLocked(key string) {
	delete(c.items, key)
	for tag, keys := range c.tagIndex {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.tagIndex, tag)
		}
	}
}
