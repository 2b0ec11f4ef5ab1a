package resolver

import (
	"sync"
	"time"

	"github.com/icar1an/serenity/internal/model"
)

// DefaultTTL is how long a consensus lookup (including a "no prediction
// found" negative result) stays cached.
const DefaultTTL = 5 * time.Minute

// Clock supplies the current time; injected so tests control expiry.
type Clock func() time.Time

type cacheEntry struct {
	classification model.Classification
	found          bool
	insertedAt     time.Time
}

// ttlCache is the resolver's in-memory cache in front of the consensus
// store. Negative results are cached too, so a channel with no prediction
// does not hit the store on every resolution.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     Clock
}

func newTTLCache(ttl time.Duration, now Clock) *ttlCache {
	if now == nil {
		now = time.Now
	}
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// get returns (classification, found-in-store, present-and-fresh).
func (c *ttlCache) get(key string) (model.Classification, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return model.Unknown, false, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return model.Unknown, false, false
	}
	return e.classification, e.found, true
}

func (c *ttlCache) put(key string, cls model.Classification, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		classification: cls,
		found:          found,
		insertedAt:     c.now(),
	}
}

func (c *ttlCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *ttlCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// sweep drops expired entries; called periodically by the owning resolver.
func (c *ttlCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
}
