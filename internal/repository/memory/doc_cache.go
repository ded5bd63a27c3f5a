package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// DocCache keeps recently loaded manuscript documents in memory so assist
// requests do not re-read the same plan and synopsis files on every turn.
// Entries are keyed by workspace path and invalidated on every write.
type DocCache struct {
	cache *cache.Cache
}

func NewDocCache() *DocCache {
	// Default expiration of 15 minutes, purge expired items every 5 minutes
	c := cache.New(15*time.Minute, 5*time.Minute)
	return &DocCache{
		cache: c,
	}
}

func (c *DocCache) Get(path string) (string, bool) {
	if x, found := c.cache.Get(path); found {
		return x.(string), true
	}
	return "", false
}

func (c *DocCache) Set(path string, content string) {
	c.cache.Set(path, content, cache.DefaultExpiration)
}

func (c *DocCache) Invalidate(path string) {
	c.cache.Delete(path)
}

func (c *DocCache) Flush() {
	c.cache.Flush()
}
