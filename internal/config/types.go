// Package config manages application configuration from a YAML file,
// a .env file, BOT_* environment variables and default values.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration wraps every error returned by Load.
var ErrConfiguration = errors.New("configuration error")

// Config holds all application settings.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Profile   ProfileConfig   `mapstructure:"profile"`
	Location  LocationConfig  `mapstructure:"location"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Prayer    PrayerConfig    `mapstructure:"prayer"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`

	// Zone is Profile.Timezone resolved at load time.
	Zone *time.Location `mapstructure:"-"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ProfileConfig describes the profile being maintained.
type ProfileConfig struct {
	Name     string `mapstructure:"name"      validate:"required"`
	Timezone string `mapstructure:"timezone"  validate:"required"`
	PhotoDir string `mapstructure:"photo_dir" validate:"required"`
	PhotoExt string `mapstructure:"photo_ext" validate:"required,startswith=."`
}

// LocationConfig is where weather and prayer times are computed for.
type LocationConfig struct {
	City      string  `mapstructure:"city"      validate:"required"`
	Latitude  float64 `mapstructure:"latitude"  validate:"min=-90,max=90"`
	Longitude float64 `mapstructure:"longitude" validate:"min=-180,max=180"`
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"  validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout"   validate:"gt=0"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gt=0"`
}

// PrayerConfig configures the AlAdhan client.
type PrayerConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	School  int           `mapstructure:"school"   validate:"min=0,max=1"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"gt=0"`
}

// RetryConfig is the fixed retry policy shared by every call site.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts" validate:"min=1,max=10"`
	Delay    time.Duration `mapstructure:"delay"    validate:"gte=0"`
}

// TelegramConfig holds the bot credentials and the business connection
// through which the owner's profile is edited.
type TelegramConfig struct {
	Token                string  `mapstructure:"token"`
	BusinessConnectionID string  `mapstructure:"business_connection_id"`
	AdminUserID          int64   `mapstructure:"admin_user_id"   validate:"gte=0"`
	APIURL               string  `mapstructure:"api_url"         validate:"required,url"`
	RatePerSecond        float64 `mapstructure:"rate_per_second" validate:"gt=0"`
	Burst                int     `mapstructure:"burst"           validate:"min=1"`
}

// TaskConfig schedules one task. Cron takes precedence over Interval.
type TaskConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	Cron       string        `mapstructure:"cron"`
	RunOnStart bool          `mapstructure:"run_on_start"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// DatabaseConfig locates the state database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// HTTPConfig controls the optional status server.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}
