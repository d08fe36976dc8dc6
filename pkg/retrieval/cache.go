package retrieval

import "sync"

// cacheKey identifies one cached facet. The graph version is part of the
// key, so an ingestion run's version bump makes every previous entry for
// that author unreachable.
type cacheKey struct {
	authorID string
	version  int64
	facet    string
}

// facetCache holds the per-author facets that do not depend on the topic.
// Readers observe either the previous or the new value of an entry, never
// a partial write.
type facetCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]any
	// latest tracks the newest version seen per author so stale entries
	// can be dropped instead of accumulating across ingestion runs.
	latest map[string]int64
}

func newFacetCache() *facetCache {
	return &facetCache{
		entries: make(map[cacheKey]any),
		latest:  make(map[string]int64),
	}
}

func (c *facetCache) get(key cacheKey) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *facetCache) set(key cacheKey, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.latest[key.authorID]; ok && key.version > prev {
		for k := range c.entries {
			if k.authorID == key.authorID && k.version < key.version {
				delete(c.entries, k)
			}
		}
	}
	if key.version >= c.latest[key.authorID] {
		c.latest[key.authorID] = key.version
	}
	c.entries[key] = value
}

// drop removes every entry for one author, used when the author is deleted.
func (c *facetCache) drop(authorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.authorID == authorID {
			delete(c.entries, k)
		}
	}
	delete(c.latest, authorID)
}
