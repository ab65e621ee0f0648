package prayer

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	cachedDays   = 3
	cachedDayTTL = 6 * time.Hour
	// sharedFetchTimeout bounds a fetch that no longer follows its first caller.
	sharedFetchTimeout = time.Minute
)

// CachedSource keeps fetched days keyed by local date. Concurrent misses for
// the same date share one upstream call and failures are not remembered.
// The shared call is detached from the caller that started it, so one
// caller giving up never fails the others.
type CachedSource struct {
	next  Source
	days  *expirable.LRU[string, Day]
	group singleflight.Group
}

// NewCachedSource wraps next with a day cache.
func NewCachedSource(next Source) *CachedSource {
	return &CachedSource{
		next: next,
		days: expirable.NewLRU[string, Day](cachedDays, nil, cachedDayTTL),
	}
}

// Day returns the cached day for date or fetches it.
func (c *CachedSource) Day(ctx context.Context, date time.Time) (Day, error) {
	key := date.Format(time.DateOnly)
	if day, ok := c.days.Get(key); ok {
		return day, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if day, ok := c.days.Get(key); ok {
			return day, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		day, err := c.next.Day(fetchCtx, date)
		if err != nil {
			return Day{}, err
		}
		c.days.Add(key, day)
		return day, nil
	})

	select {
	case <-ctx.Done():
		return Day{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Day{}, res.Err
		}
		return res.Val.(Day), nil
	}
}
