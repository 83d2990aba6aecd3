package collector

import (
	"sync"
	"time"

	"FriendlyTicker/internal/model"
)

// Cache is an in-memory price-history cache with a fixed TTL, injected into
// the Collector so callers that want uncached reads can simply omit it.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	storedAt time.Time
	points   []model.PricePoint
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached history for symbol if it is still fresh.
func (c *Cache) Get(symbol string) ([]model.PricePoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[symbol]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, symbol)
		return nil, false
	}
	return entry.points, true
}

// Put stores the history for symbol, stamping it with the current time.
func (c *Cache) Put(symbol string, points []model.PricePoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = cacheEntry{storedAt: c.clock(), points: points}
}
