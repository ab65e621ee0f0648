package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultTimezone = "Asia/Tashkent"
	DefaultPhotoDir = "profile_pics"
	DefaultPhotoExt = ".jpg"

	DefaultCity      = "Tashkent"
	DefaultLatitude  = 41.2995
	DefaultLongitude = 69.2401

	DefaultWeatherBaseURL  = "https://api.openweathermap.org"
	DefaultWeatherTimeout  = 5 * time.Second
	DefaultWeatherCacheTTL = 5 * time.Minute

	DefaultPrayerBaseURL = "https://api.aladhan.com"
	DefaultPrayerSchool  = 1 // Hanafi Asr
	DefaultPrayerTimeout = 5 * time.Second

	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 2 * time.Second

	DefaultTelegramAPIURL        = "https://api.telegram.org"
	DefaultTelegramRatePerSecond = 1.0
	DefaultTelegramBurst         = 5

	DefaultDBPath   = "profilebot.db"
	DefaultHTTPAddr = ":8080"
)

// Task names known to the scheduler.
const (
	TaskProfileUpdate = "profile_update"
	TaskPhotoRotation = "photo_rotation"
)

// DefaultTasks is the schedule used when nothing is configured.
var DefaultTasks = map[string]TaskConfig{
	TaskProfileUpdate: {Enabled: true, Interval: time.Minute},
	TaskPhotoRotation: {Enabled: true, Cron: "0 0 * * *", RunOnStart: true},
}

// defaultValues backs both viper defaults and the numeric fallbacks.
var defaultValues = map[string]any{
	"log.level": DefaultLogLevel,
	"log.json":  false,

	"profile.name":      "",
	"profile.timezone":  DefaultTimezone,
	"profile.photo_dir": DefaultPhotoDir,
	"profile.photo_ext": DefaultPhotoExt,

	"location.city":      DefaultCity,
	"location.latitude":  DefaultLatitude,
	"location.longitude": DefaultLongitude,

	"weather.api_key":   "",
	"weather.base_url":  DefaultWeatherBaseURL,
	"weather.timeout":   DefaultWeatherTimeout,
	"weather.cache_ttl": DefaultWeatherCacheTTL,

	"prayer.base_url": DefaultPrayerBaseURL,
	"prayer.school":   DefaultPrayerSchool,
	"prayer.timeout":  DefaultPrayerTimeout,

	"retry.attempts": DefaultRetryAttempts,
	"retry.delay":    DefaultRetryDelay,

	"telegram.token":                  "",
	"telegram.business_connection_id": "",
	"telegram.admin_user_id":          0,
	"telegram.api_url":                DefaultTelegramAPIURL,
	"telegram.rate_per_second":        DefaultTelegramRatePerSecond,
	"telegram.burst":                  DefaultTelegramBurst,

	"database.path": DefaultDBPath,

	"http.enabled": false,
	"http.addr":    DefaultHTTPAddr,
}

// setDefaults registers every known key so that BOT_* variables can
// override them through AutomaticEnv.
func setDefaults(v *viper.Viper) {
	for key, value := range defaultValues {
		v.SetDefault(key, value)
	}
	for name, task := range DefaultTasks {
		prefix := "scheduler.tasks." + name + "."
		v.SetDefault(prefix+"enabled", task.Enabled)
		v.SetDefault(prefix+"interval", task.Interval)
		v.SetDefault(prefix+"cron", task.Cron)
		v.SetDefault(prefix+"run_on_start", task.RunOnStart)
	}
}
