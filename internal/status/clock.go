package status

import "time"

// Clock yields the current instant already normalized to the application
// location. All composition and scheduling reads time through a Clock so
// that no computation ever mixes two time zones.
type Clock func() time.Time

// NewClock returns a Clock pinned to loc.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// Fixed returns a Clock that always reports t. Used by previews and tests.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}
