// Package weather fetches current conditions from OpenWeatherMap, keeps the
// last successful reading in a short-lived cache and renders it as the
// one-line Uzbek weather summary used in the profile bio.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edgard/profilebot/internal/retry"
)

// ErrMalformed indicates a successful response whose body lacks the fields
// the summary needs. It is never retried.
var ErrMalformed = errors.New("malformed weather payload")

// DefaultBaseURL is the public OpenWeatherMap endpoint.
const DefaultBaseURL = "https://api.openweathermap.org"

// Snapshot is one weather reading.
type Snapshot struct {
	Description string
	Temperature float64
	FetchedAt   time.Time
}

// Fetcher retrieves a fresh reading. FetchedAt is filled in by the cache.
type Fetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// ClientConfig configures the OpenWeatherMap client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	City    string
	Timeout time.Duration
	Retry   retry.Policy
}

// Client is the HTTP client for the OpenWeatherMap current-weather API.
type Client struct {
	baseURL    string
	apiKey     string
	city       string
	policy     retry.Policy
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a weather client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		city:       cfg.City,
		policy:     cfg.Retry,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "weather_client"),
	}
}

type currentResponse struct {
	Weather []struct {
		Description *string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

// Fetch requests the current weather, retrying transport and HTTP status
// failures according to the client's policy.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		snap, err = c.fetchOnce(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "Weather API request failed", "city", c.city, "error", err)
		}
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	c.logger.DebugContext(ctx, "Weather data fetched successfully", "city", c.city)
	return snap, nil
}

func (c *Client) fetchOnce(ctx context.Context) (Snapshot, error) {
	q := url.Values{}
	q.Set("q", c.city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "en")
	endpoint := c.baseURL + "/data/2.5/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, retry.Permanent(fmt.Errorf("failed to build weather request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to call weather API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Snapshot{}, fmt.Errorf("weather API error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Snapshot{}, retry.Permanent(fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return body.snapshot()
}

func (r currentResponse) snapshot() (Snapshot, error) {
	if len(r.Weather) == 0 || r.Weather[0].Description == nil {
		return Snapshot{}, retry.Permanent(fmt.Errorf("%w: missing weather[0].description", ErrMalformed))
	}
	if r.Main == nil || r.Main.Temp == nil {
		return Snapshot{}, retry.Permanent(fmt.Errorf("%w: missing main.temp", ErrMalformed))
	}
	return Snapshot{
		Description: *r.Weather[0].Description,
		Temperature: *r.Main.Temp,
	}, nil
}
