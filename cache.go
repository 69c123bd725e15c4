package tokens

import (
	"sync"
	"sync/atomic"
)

type cacheKey struct {
	component  string
	breakpoint string
}

// CacheStats is a point-in-time view of cache activity.
type CacheStats struct {
	Entries       int    `json:"entries"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
	Epoch         uint64 `json:"epoch"`
}

// Cache memoizes resolved tables per (component, breakpoint). Within an epoch
// repeated reads return the same *Resolved; InvalidateAll starts a new epoch.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Resolved
	epoch   uint64

	hits          atomic.Uint64
	misses        atomic.Uint64
	invalidations atomic.Uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[cacheKey]*Resolved{}}
}

// Get returns the cached table for (component, breakpoint), calling compute
// on a miss. compute runs without the lock held; when an invalidation races
// with it the result is returned but not stored. When two callers miss
// concurrently the first stored value wins and both receive it. Errors are
// never cached.
func (c *Cache) Get(component, breakpoint string, compute func() (*Resolved, error)) (*Resolved, bool, error) {
	key := cacheKey{component: component, breakpoint: breakpoint}

	c.mu.RLock()
	cached, ok := c.entries[key]
	epoch := c.epoch
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return cached, true, nil
	}

	c.misses.Add(1)
	resolved, err := compute()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return resolved, false, nil
	}
	if existing, ok := c.entries[key]; ok {
		return existing, false, nil
	}
	c.entries[key] = resolved
	return resolved, false, nil
}

// Peek returns a cached entry without computing.
func (c *Cache) Peek(component, breakpoint string) (*Resolved, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resolved, ok := c.entries[cacheKey{component: component, breakpoint: breakpoint}]
	return resolved, ok
}

// InvalidateAll discards every entry and advances the epoch.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = map[cacheKey]*Resolved{}
	c.epoch++
	c.mu.Unlock()
	c.invalidations.Add(1)
}

// Invalidate discards the entries for one component. It also advances the
// epoch so in-flight computations for any component are not stored.
func (c *Cache) Invalidate(component string) {
	c.mu.Lock()
	for key := range c.entries {
		if key.component == component {
			delete(c.entries, key)
		}
	}
	c.epoch++
	c.mu.Unlock()
	c.invalidations.Add(1)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Epoch returns the current invalidation generation.
func (c *Cache) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Stats reports counters accumulated since construction.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries, epoch := len(c.entries), c.epoch
	c.mu.RUnlock()
	return CacheStats{
		Entries:       entries,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
		Epoch:         epoch,
	}
}
