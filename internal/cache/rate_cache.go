package cache

import (
	"fmt"
	"sync"
	"time"

	"tariffengine/internal/model"
)

// DefaultTTL is how long a resolved rate stays hot before the store is
// consulted again.
const DefaultTTL = 24 * time.Hour

type entry struct {
	rate     model.TariffRate
	storedAt time.Time
}

// RateCache is a process-wide front for the rate store. It is guarded for
// concurrent access and sweeps stale entries lazily when they are touched;
// there is no background eviction goroutine. It is injected into the rate
// resolver rather than held as package state.
type RateCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewRateCache(ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RateCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Key builds the cache key for a resolution. A nil year maps to the
// "LATEST" slot so year-less resolutions don't collide with pinned years.
func Key(importing, exporting, hsCode string, year *int) string {
	yearPart := "LATEST"
	if year != nil {
		yearPart = fmt.Sprintf("%d", *year)
	}
	return fmt.Sprintf("%s_%s_%s_%s", importing, exporting, hsCode, yearPart)
}

// Get returns the cached rate for key if present and fresh. An expired
// entry is deleted on the spot.
func (c *RateCache) Get(key string) (model.TariffRate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return model.TariffRate{}, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return model.TariffRate{}, false
	}
	return e.rate, true
}

// Put stores a resolved rate, replacing any previous entry for the key.
func (c *RateCache) Put(key string, rate model.TariffRate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{rate: rate, storedAt: c.now()}
}

// Clear drops every entry. Exposed to admins so catalogue edits take
// effect without waiting out the TTL.
func (c *RateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the current number of entries, expired or not.
func (c *RateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
