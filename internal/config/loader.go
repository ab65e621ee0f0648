package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	_ "time/tzdata" // timezone names must resolve on minimal images
)

// Load reads configuration in this order of precedence, highest first:
//  1. BOT_* environment variables (including those from envFile)
//  2. the YAML file at path, or ./config.yaml when path is empty
//  3. built-in defaults
//
// Missing files are not errors. Invalid numeric values and an unknown
// timezone fall back to defaults with a warning.
func Load(path, envFile string) (*Config, error) {
	startTime := time.Now()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed to load env file %s: %w", ErrConfiguration, envFile, err)
			}
			slog.Debug("env file not found, skipping", "path", envFile)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %w", ErrConfiguration, err)
	}

	sanitizeNumbers(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	resolveZone(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if cfg.Weather.APIKey == "" {
		slog.Warn("Missing weather.api_key, weather line will show the fallback")
	}

	slog.Info("Configuration loaded",
		"city", cfg.Location.City,
		"timezone", cfg.Profile.Timezone,
		"latitude", cfg.Location.Latitude,
		"longitude", cfg.Location.Longitude,
		"duration_ms", time.Since(startTime).Milliseconds())

	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
			return nil
		}
		return err
	}
	slog.Debug("Configuration file loaded", "path", v.ConfigFileUsed())
	return nil
}
