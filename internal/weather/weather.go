package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Fallback is shown whenever no usable reading is available.
const Fallback = "T: ?°C, ?"

// Status tells how a summary was produced.
type Status int

const (
	// StatusFresh means the summary comes from a fetch made by this call.
	StatusFresh Status = iota
	// StatusCached means the summary comes from a snapshot still inside its TTL.
	StatusCached
	// StatusFallback means no usable reading was available.
	StatusFallback
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusCached:
		return "cached"
	case StatusFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is the outcome of a summary request.
type Result struct {
	Text   string
	Status Status
	Err    error
}

// OK reports whether the summary carries real data.
func (r Result) OK() bool {
	return r.Status != StatusFallback
}

// Uzbek labels for OpenWeatherMap descriptions.
var descriptions = map[string]string{
	"clear sky":            "Quyoshli",
	"few clouds":           "Biroz bulutli",
	"scattered clouds":     "Bulutli",
	"broken clouds":        "Bulutli",
	"overcast clouds":      "Qorong‘i",
	"light rain":           "Yengil yomgʻir",
	"moderate rain":        "Oʻrtacha yomgʻir",
	"heavy intensity rain": "Kuchli yomgʻir",
	"very heavy rain":      "Juda kuchli yomgʻir",
	"light snow":           "Yengil qor",
	"snow":                 "Qor",
	"mist":                 "Tuman",
	"haze":                 "Tutun",
	"thunderstorm":         "Momaqaldiroq",
	"drizzle":              "Mayda yomgʻir",
}

// Label maps a raw description to its Uzbek label. Unknown descriptions
// are returned lower-cased with the first letter capitalized.
func Label(description string) string {
	lower := strings.ToLower(description)
	if label, ok := descriptions[lower]; ok {
		return label
	}
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return string(unicode.ToUpper(r)) + lower[size:]
}

// Format renders a snapshot as "T: +23°C, Quyoshli". The temperature is
// rounded half to even; a non-finite temperature yields Fallback.
func Format(s Snapshot) string {
	if math.IsNaN(s.Temperature) || math.IsInf(s.Temperature, 0) {
		return Fallback
	}
	temp := int(math.RoundToEven(s.Temperature))
	return fmt.Sprintf("T: %+d°C, %s", temp, Label(s.Description))
}

// Service produces weather summaries from a cache backed by a Fetcher.
type Service struct {
	fetcher Fetcher
	cache   *Cache
	logger  *slog.Logger
}

// NewService wires a fetcher to a cache.
func NewService(fetcher Fetcher, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger.With("component", "weather"),
	}
}

// Short returns the weather line for now. It never fails: any fetch or
// format problem yields Fallback with the cause in Result.Err.
func (s *Service) Short(ctx context.Context, now time.Time) Result {
	snap, cached, err := s.cache.Load(ctx, now, s.fetcher.Fetch)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch or cache weather data", "error", err)
		return Result{Text: Fallback, Status: StatusFallback, Err: err}
	}

	text := Format(snap)
	if text == Fallback {
		err := fmt.Errorf("%w: temperature %v", ErrMalformed, snap.Temperature)
		s.logger.ErrorContext(ctx, "Failed to format weather data", "error", err)
		return Result{Text: Fallback, Status: StatusFallback, Err: err}
	}

	status := StatusFresh
	if cached {
		status = StatusCached
	}
	return Result{Text: text, Status: status}
}
