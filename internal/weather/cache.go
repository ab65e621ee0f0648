package weather

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a snapshot is served without refetching.
const DefaultTTL = 5 * time.Minute

// Cache holds the single most recent snapshot. The whole
// check-fetch-store sequence runs under one lock, so overlapping callers
// never see a half-written slot and never fetch twice for the same expiry.
type Cache struct {
	mu   sync.Mutex
	ttl  time.Duration
	slot *Snapshot
}

// NewCache returns an empty cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl}
}

// Snapshot returns the stored snapshot regardless of its age.
func (c *Cache) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == nil {
		return Snapshot{}, false
	}
	return *c.slot, true
}

// Load returns the stored snapshot if it is younger than the TTL at now,
// otherwise calls fetch and stores its result stamped with now. A failed
// fetch leaves the slot untouched and an expired snapshot is never served.
// The boolean reports whether the value came from the slot.
func (c *Cache) Load(ctx context.Context, now time.Time, fetch func(context.Context) (Snapshot, error)) (Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot != nil && now.Sub(c.slot.FetchedAt) < c.ttl {
		return *c.slot, true, nil
	}

	snap, err := fetch(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	snap.FetchedAt = now
	c.slot = &snap
	return snap, false, nil
}
