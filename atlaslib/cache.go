package atlaslib

import (
	"sort"
	"sync"
	"time"
)

type cacheEntry struct {
	results  []QueryResult
	storedAt time.Time
}

// resultCache memoizes resolution results per IP string. The key is the
// literal caller input, no normalization applied. All access is serialized
// under a single mutex so eviction sweeps cannot race concurrent get/put
// calls. A nil *resultCache is valid and turns every method into a no-op,
// which is how a disabled cache is modeled.
type resultCache struct {
	mutex   sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	hits    uint64
	misses  uint64
}

func newResultCache(ttl time.Duration, maxSize int) *resultCache {
	return &resultCache{
		entries: map[string]cacheEntry{},
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// get returns a deep copy of a live entry. An expired entry is removed and
// counted as a miss.
func (c *resultCache) get(ip string, now time.Time) ([]QueryResult, bool) {
	if c == nil {
		return nil, false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[ip]
	if !ok {
		c.misses++

		return nil, false
	}

	if now.Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, ip)
		c.misses++

		return nil, false
	}

	c.hits++

	return copyResults(entry.results), true
}

// put stores a deep copy and, when the size bound is exceeded, sweeps the
// oldest 20% of entries (at least one). Bulk sweeps trade eviction
// precision for infrequent O(n log n) cleanups instead of per-access
// bookkeeping.
func (c *resultCache) put(ip string, results []QueryResult, now time.Time) {
	if c == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[ip] = cacheEntry{
		results:  copyResults(results),
		storedAt: now,
	}

	if len(c.entries) > c.maxSize {
		c.sweep()
	}
}

// sweep must be called under the mutex.
func (c *resultCache) sweep() {
	keys := make([]string, 0, len(c.entries))

	for k := range c.entries {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].storedAt.Before(c.entries[keys[j]].storedAt)
	})

	toDelete := len(keys) / 5
	if toDelete < 1 {
		toDelete = 1
	}

	for _, k := range keys[:toDelete] {
		delete(c.entries, k)
	}
}

// clear empties the cache. Hit/miss counters are kept.
func (c *resultCache) clear() {
	if c == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = map[string]cacheEntry{}
}

func (c *resultCache) counters() (hits, misses uint64, size int) {
	if c == nil {
		return 0, 0, 0
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.hits, c.misses, len(c.entries)
}

func copyResults(results []QueryResult) []QueryResult {
	rv := make([]QueryResult, len(results))
	copy(rv, results)

	return rv
}
