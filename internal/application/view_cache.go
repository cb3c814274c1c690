package application

import (
	"strconv"
	"sync"
	"time"

	"github.com/example/hacktown-ops/internal/event"
)

// viewCache keeps recently expanded venue views keyed by snapshot revision
// and day filter, so concurrent dashboard reads of one snapshot expand the
// templates once.
type viewCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]viewCacheEntry
}

type viewCacheEntry struct {
	venues    []event.VenueWithSlots
	expiresAt time.Time
}

func newViewCache(ttl time.Duration, maxEntries int, now func() time.Time) *viewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 16
	}
	if now == nil {
		now = time.Now
	}
	return &viewCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]viewCacheEntry),
	}
}

func (c *viewCache) Get(key string) ([]event.VenueWithSlots, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneVenueViews(entry.venues), true
}

func (c *viewCache) Store(key string, venues []event.VenueWithSlots) {
	if c == nil {
		return
	}
	cloned := cloneVenueViews(venues)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = viewCacheEntry{venues: cloned, expiresAt: expiry}
}

func (c *viewCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]viewCacheEntry)
	c.mu.Unlock()
}

func (c *viewCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *viewCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

// cloneVenueViews copies the outer slice and every slot list. Activities are
// shared; they are never mutated in place.
func cloneVenueViews(venues []event.VenueWithSlots) []event.VenueWithSlots {
	out := make([]event.VenueWithSlots, len(venues))
	for i, venue := range venues {
		out[i] = event.VenueWithSlots{
			Venue: venue.Venue,
			Slots: append([]event.ComputedSlot{}, venue.Slots...),
		}
	}
	return out
}

func viewCacheKey(rev uint64, day *event.WeekDay) string {
	key := strconv.FormatUint(rev, 10) + "|"
	if day != nil {
		key += string(*day)
	}
	return key
}
