// Package compose assembles the three profile fields from the clock, the
// prayer schedule and the weather. Composition always yields all three
// fields; a failing source only degrades its own substring.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/profilebot/internal/prayer"
	"github.com/edgard/profilebot/internal/status"
	"github.com/edgard/profilebot/internal/weather"
)

// Placeholders used when the prayer data could not be fetched at all.
const (
	PrayerUnavailable = "Namoz: ?"
	HijriUnavailable  = "Hijri: ???"
)

// Outcome tells whether a part used real data.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFallback Outcome = "fallback"
)

// Part is the outcome of one substring.
type Part struct {
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
	Err     error   `json:"-"`
}

func ok(detail string) Part { return Part{Outcome: OutcomeOK, Detail: detail} }

func fallback(err error) Part {
	p := Part{Outcome: OutcomeFallback, Err: err}
	if err != nil {
		p.Detail = err.Error()
	}
	return p
}

// Report collects the outcome of every sourced part of a composition.
type Report struct {
	NextPrayer Part `json:"next_prayer"`
	Hijri      Part `json:"hijri"`
	Weather    Part `json:"weather"`
}

// Degraded reports whether any part fell back.
func (r Report) Degraded() bool {
	return r.NextPrayer.Outcome == OutcomeFallback ||
		r.Hijri.Outcome == OutcomeFallback ||
		r.Weather.Outcome == OutcomeFallback
}

// Fields are the three profile strings.
type Fields struct {
	First  string    `json:"first_name"`
	Last   string    `json:"last_name"`
	Bio    string    `json:"bio"`
	At     time.Time `json:"at"`
	Report Report    `json:"report"`
}

// WeatherSummarizer yields the weather line.
type WeatherSummarizer interface {
	Short(ctx context.Context, now time.Time) weather.Result
}

// Composer builds Fields for a given instant.
type Composer struct {
	name    string
	prayers prayer.Source
	weather WeatherSummarizer
	logger  *slog.Logger
}

// New creates a Composer for the given display name.
func New(name string, prayers prayer.Source, w WeatherSummarizer, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		name:    name,
		prayers: prayers,
		weather: w,
		logger:  logger.With("component", "composer"),
	}
}

// Compose renders the fields for now:
//
//	First: "{name} | {status} | {HH:MM}"
//	Last:  "{short date} | {hijri}"
//	Bio:   "{next prayer}\n{weather}"
func (c *Composer) Compose(ctx context.Context, now time.Time) Fields {
	var report Report

	next, hijri := PrayerUnavailable, HijriUnavailable
	day, err := c.prayers.Day(ctx, now)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to fetch or parse prayer data", "error", err)
		report.NextPrayer = fallback(err)
		report.Hijri = fallback(err)
	} else {
		next, report.NextPrayer = c.nextPrayer(day.Schedule, now)
		hijri, report.Hijri = hijriLine(day.Hijri)
	}

	w := c.weather.Short(ctx, now)
	if w.OK() {
		report.Weather = ok(w.Status.String())
	} else {
		report.Weather = fallback(w.Err)
	}

	return Fields{
		First:  fmt.Sprintf("%s | %s | %s", c.name, status.Label(now), status.ShortTime(now)),
		Last:   fmt.Sprintf("%s | %s", status.ShortDate(now), hijri),
		Bio:    fmt.Sprintf("%s\n%s", next, w.Text),
		At:     now,
		Report: report,
	}
}

func (c *Composer) nextPrayer(s prayer.Schedule, now time.Time) (string, Part) {
	up, err := prayer.Next(s, now)
	switch {
	case err == nil:
		return up.String(), ok(up.Key)
	case errors.Is(err, prayer.ErrNoneLeft):
		return prayer.AllDone, ok("done")
	default:
		c.logger.Warn("Failed to calculate next prayer", "error", err)
		return prayer.Placeholder, fallback(err)
	}
}

func hijriLine(h prayer.HijriDate) (string, Part) {
	line := prayer.HijriShort(h)
	if line == prayer.Placeholder {
		return line, fallback(fmt.Errorf("invalid hijri date %+v", h))
	}
	return line, ok("")
}
