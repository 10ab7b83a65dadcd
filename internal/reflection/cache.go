package reflection

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// minCounters keeps tiny caches usable.
const minCounters = 1000

// Cache is an in-process reflection cache keyed by memory text.
type Cache struct {
	c *ristretto.Cache[string, string]
}

// NewCache creates a cache holding up to maxCostBytes of reflections.
func NewCache(maxCostBytes int64) (*Cache, error) {
	counters := max(maxCostBytes/100*10, minCounters)
	c, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get returns the cached reflection for key.
func (c *Cache) Get(key string) (string, bool) {
	return c.c.Get(key)
}

// Set stores value with ttl and waits for the write to be applied.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	c.c.SetWithTTL(key, value, int64(len(key)+len(value)), ttl)
	c.c.Wait()
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
