// Package prayer works out the next of the five daily prayers and formats
// it, together with the Hijri date, as short Uzbek strings.
package prayer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Canonical prayer keys as returned by AlAdhan.
const (
	Fajr    = "Fajr"
	Dhuhr   = "Dhuhr"
	Asr     = "Asr"
	Maghrib = "Maghrib"
	Isha    = "Isha"
)

// Order is the fixed daily order in which prayers are considered.
var Order = [5]string{Fajr, Dhuhr, Asr, Maghrib, Isha}

// Uzbek display names.
var names = map[string]string{
	Fajr:    "Bomdod",
	Dhuhr:   "Peshin",
	Asr:     "Asr",
	Maghrib: "Shom",
	Isha:    "Xufton",
}

// Fixed output strings.
const (
	AllDone     = "Bugun 🕌✅"
	Placeholder = "?"
)

// ErrNoneLeft indicates every prayer of the day has already passed.
// The day does not roll over to tomorrow's Fajr.
var ErrNoneLeft = errors.New("no prayers left today")

// Schedule maps canonical prayer keys to "HH:MM" times of day.
// Keys outside Order are ignored; missing or empty entries are skipped.
type Schedule map[string]string

// Upcoming is the next prayer relative to some instant.
type Upcoming struct {
	Key       string
	Name      string
	Clock     string
	At        time.Time
	Remaining time.Duration
}

// String renders "Peshin 12:00 (qoldi: 1 soat 0 daqiqa)".
func (u Upcoming) String() string {
	hours := int(u.Remaining / time.Hour)
	minutes := int((u.Remaining % time.Hour) / time.Minute)
	return fmt.Sprintf("%s %s (qoldi: %d soat %d daqiqa)", u.Name, u.Clock, hours, minutes)
}

// cleanClock drops a trailing zone annotation such as " (+05)".
func cleanClock(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Next returns the first prayer in Order whose time today, in now's
// location, is strictly after now. A malformed time aborts the search.
func Next(s Schedule, now time.Time) (Upcoming, error) {
	for _, key := range Order {
		clock := cleanClock(s[key])
		if clock == "" {
			continue
		}

		parsed, err := time.Parse("15:04", clock)
		if err != nil {
			return Upcoming{}, fmt.Errorf("invalid %s time %q: %w", key, s[key], err)
		}

		at := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		if at.After(now) {
			return Upcoming{
				Key:       key,
				Name:      names[key],
				Clock:     clock,
				At:        at,
				Remaining: at.Sub(now),
			}, nil
		}
	}
	return Upcoming{}, ErrNoneLeft
}

// FormatNext renders the next prayer line, AllDone once the day is over,
// or Placeholder on any error.
func FormatNext(s Schedule, now time.Time) string {
	up, err := Next(s, now)
	switch {
	case err == nil:
		return up.String()
	case errors.Is(err, ErrNoneLeft):
		return AllDone
	default:
		return Placeholder
	}
}

// Short Hijri month names.
var hijriMonths = [12]string{
	"Muh", "Saf", "Rab-I", "Rab-II", "Jum-I", "Jum-II",
	"Raj", "Sha", "Ram", "Shav", "Zul-Q", "Zulh",
}

// HijriDate is a day of the Islamic calendar. Month is 1-based.
type HijriDate struct {
	Day   int
	Month int
	Year  int
}

// HijriShort renders "13 Ram 1446", or Placeholder for a month outside 1..12.
func HijriShort(h HijriDate) string {
	if h.Month < 1 || h.Month > len(hijriMonths) {
		return Placeholder
	}
	return fmt.Sprintf("%d %s %d", h.Day, hijriMonths[h.Month-1], h.Year)
}
