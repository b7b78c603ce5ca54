package sheets

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL keeps reads under the Sheets API per-minute quota.
const DefaultTTL = 60 * time.Second

type cacheEntry struct {
	table   *Table
	expires time.Time
}

// Cache is a read-through TTL cache of whole tables keyed by table name.
// Invalidate bumps a per-key generation so a load that started before the
// invalidation can neither populate the cache nor be joined by later readers.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	entries    map[string]cacheEntry
	generation map[string]uint64
	group      singleflight.Group
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
		generation: make(map[string]uint64),
	}
}

// Get returns the cached table for key, calling load on a miss or after expiry.
// Failed loads are not cached.
func (c *Cache) Get(key string, load func() (*Table, error)) (*Table, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		return e.table, nil
	}
	gen := c.generation[key]
	c.mu.Unlock()

	v, err, _ := c.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		t, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.generation[key] == gen {
			c.entries[key] = cacheEntry{table: t, expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Invalidate drops key so the next Get reloads it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.generation[key]++
}
