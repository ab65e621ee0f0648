package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/edgard/profilebot/internal/retry"
)

// numericKey describes a numeric setting and its accepted range.
type numericKey struct {
	key      string
	parse    func(string) (float64, error)
	min, max float64
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return 0, fmt.Errorf("not a finite number: %s", s)
	}
	return f, err
}

func parseInt(s string) (float64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	return float64(n), err
}

func parseDuration(s string) (float64, error) {
	d, err := time.ParseDuration(s)
	return float64(d), err
}

var numericKeys = []numericKey{
	{"location.latitude", parseFloat, -90, 90},
	{"location.longitude", parseFloat, -180, 180},
	{"weather.timeout", parseDuration, 1, math.MaxInt64},
	{"weather.cache_ttl", parseDuration, 1, math.MaxInt64},
	{"prayer.school", parseInt, 0, 1},
	{"prayer.timeout", parseDuration, 1, math.MaxInt64},
	{"retry.attempts", parseInt, 1, 10},
	{"retry.delay", parseDuration, 0, math.MaxInt64},
	{"telegram.admin_user_id", parseInt, 0, math.MaxInt64},
	{"telegram.rate_per_second", parseFloat, 1e-6, math.MaxFloat64},
	{"telegram.burst", parseInt, 1, math.MaxInt32},
}

// sanitizeNumbers replaces unparsable or out-of-range numeric values with
// their defaults. Bad numbers are logged, never fatal.
func sanitizeNumbers(v *viper.Viper) {
	keys := append([]numericKey(nil), numericKeys...)
	for name := range v.GetStringMap("scheduler.tasks") {
		keys = append(keys, numericKey{"scheduler.tasks." + name + ".interval", parseDuration, 0, math.MaxInt64})
	}

	for _, nk := range keys {
		raw := v.Get(nk.key)
		if raw == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(raw))
		if s == "" && nk.min <= 0 {
			continue
		}

		value, err := nk.parse(s)
		if err == nil && value >= nk.min && value <= nk.max {
			continue
		}

		def := defaultFor(nk.key)
		slog.Warn("Invalid numeric configuration value, using default",
			"key", nk.key,
			"value", raw,
			"default", def)
		v.Set(nk.key, def)
	}
}

func defaultFor(key string) any {
	if def, ok := defaultValues[key]; ok {
		return def
	}
	if name, field, ok := taskKey(key); ok {
		if task, known := DefaultTasks[name]; known && field == "interval" {
			return task.Interval
		}
	}
	return 0
}

// taskKey splits "scheduler.tasks.<name>.<field>".
func taskKey(key string) (name, field string, ok bool) {
	rest, found := strings.CutPrefix(key, "scheduler.tasks.")
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, ".")
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// resolveZone loads the configured timezone, falling back to the default.
func resolveZone(cfg *Config) {
	loc, err := time.LoadLocation(cfg.Profile.Timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using default",
			"timezone", cfg.Profile.Timezone,
			"default", DefaultTimezone,
			"error", err)
		cfg.Profile.Timezone = DefaultTimezone
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.FixedZone("UZT", 5*60*60)
		}
	}
	cfg.Zone = loc
}

// RequireTelegram reports whether the settings needed to reach the
// account are present. Commands that never touch Telegram skip this check.
func (c *Config) RequireTelegram() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if c.Telegram.BusinessConnectionID == "" {
		errs = append(errs, errors.New("telegram.business_connection_id is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// Policy converts the retry settings into a retry.Policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{Attempts: r.Attempts, Delay: r.Delay}
}
