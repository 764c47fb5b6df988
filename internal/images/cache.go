package images

import (
	"sync"
	"time"
)

type cacheItem struct {
	value     string
	expiresAt time.Time
}

// queryCache remembers search results for a while so the continuous runner
// does not hammer the image API with the same team names every half hour.
type queryCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
}

func newQueryCache(ttl time.Duration) *queryCache {
	return &queryCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
	}
}

func (c *queryCache) get(key string) (string, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return "", false
	}
	return item.value, true
}

func (c *queryCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, k)
		}
	}
	c.items[key] = cacheItem{value: value, expiresAt: now.Add(c.ttl)}
}
