package explore

import (
	"sync"
	"time"

	"github.com/appkivawa/pulseboard/app/aggregator"
)

// CacheEntry is one cached explore first page plus its continuation state.
// Entries are replaced wholesale, never mutated in place, so readers holding a
// pointer always see a consistent page.
type CacheEntry struct {
	Items    []aggregator.Item
	Cursor   string
	HasMore  bool
	Filter   string
	StoredAt time.Time
}

// Cache holds the most recent successful explore first page. There is one
// global entry; it records the filter it was populated with, and a lookup
// under any other filter bypasses it.
type Cache struct {
	mu    sync.RWMutex
	entry *CacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached first page when it exists, is within the TTL, and was
// populated with the same filter.
func (c *Cache) Get(filter string) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return nil, false
	}
	if c.entry.Filter != filter {
		return nil, false
	}
	if c.now().Sub(c.entry.StoredAt) >= c.ttl {
		return nil, false
	}

	return c.entry, true
}

// Set stores a fresh first page, replacing any previous entry. Only successful
// first-page fetches are written; later pages never touch the cache.
func (c *Cache) Set(items []aggregator.Item, cursor string, hasMore bool, filter string) {
	entry := &CacheEntry{
		Items:    append([]aggregator.Item(nil), items...),
		Cursor:   cursor,
		HasMore:  hasMore,
		Filter:   filter,
		StoredAt: c.now(),
	}

	c.mu.Lock()
	c.entry = entry
	c.mu.Unlock()
}

// Invalidate discards the entry unconditionally.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}
