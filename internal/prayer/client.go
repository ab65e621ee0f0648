package prayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/profilebot/internal/retry"
)

// ErrMalformed indicates a successful response without prayer timings.
var ErrMalformed = errors.New("malformed prayer payload")

// DefaultBaseURL is the public AlAdhan endpoint.
const DefaultBaseURL = "https://api.aladhan.com"

// Day is everything the profile needs from one AlAdhan day.
type Day struct {
	Schedule Schedule
	Hijri    HijriDate
}

// Source provides the prayer day for a local calendar date.
type Source interface {
	Day(ctx context.Context, date time.Time) (Day, error)
}

// ClientConfig configures the AlAdhan client.
type ClientConfig struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Timezone  string
	School    int
	Timeout   time.Duration
	Retry     retry.Policy
}

// Client is the HTTP client for the AlAdhan timings API.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a prayer-times client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "prayer_client"),
	}
}

// flexInt accepts both JSON numbers and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = flexInt(n)
	return nil
}

type timingsResponse struct {
	Data *struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Hijri json.RawMessage `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

type hijriPayload struct {
	Day   flexInt `json:"day"`
	Month struct {
		Number flexInt `json:"number"`
	} `json:"month"`
	Year flexInt `json:"year"`
}

// Day fetches the timings for date, retrying according to the client's
// policy. Failure after the last attempt is returned to the caller.
func (c *Client) Day(ctx context.Context, date time.Time) (Day, error) {
	var day Day
	err := retry.Do(ctx, c.cfg.Retry, func(ctx context.Context) error {
		var err error
		day, err = c.fetchOnce(ctx, date)
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to fetch prayer data", "date", date.Format(time.DateOnly), "error", err)
		}
		return err
	})
	if err != nil {
		return Day{}, err
	}
	return day, nil
}

func (c *Client) fetchOnce(ctx context.Context, date time.Time) (Day, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.cfg.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.cfg.Longitude, 'f', -1, 64))
	q.Set("school", strconv.Itoa(c.cfg.School))
	if c.cfg.Timezone != "" {
		q.Set("timezonestring", c.cfg.Timezone)
	}
	endpoint := fmt.Sprintf("%s/v1/timings/%s?%s", c.cfg.BaseURL, date.Format("02-01-2006"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Day{}, retry.Permanent(fmt.Errorf("failed to build prayer request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Day{}, fmt.Errorf("failed to call prayer API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Day{}, fmt.Errorf("prayer API error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Day{}, retry.Permanent(fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	if body.Data == nil || body.Data.Timings == nil {
		return Day{}, retry.Permanent(fmt.Errorf("%w: missing data.timings", ErrMalformed))
	}

	day := Day{Schedule: Schedule(body.Data.Timings)}

	// An unreadable Hijri block only costs the Hijri line.
	var h hijriPayload
	if err := json.Unmarshal(body.Data.Date.Hijri, &h); err != nil {
		c.logger.WarnContext(ctx, "Failed to parse Hijri date", "error", err)
	} else if h.Day <= 0 || h.Year <= 0 {
		c.logger.WarnContext(ctx, "Incomplete Hijri date", "day", int(h.Day), "year", int(h.Year))
	} else {
		day.Hijri = HijriDate{Day: int(h.Day), Month: int(h.Month.Number), Year: int(h.Year)}
	}
	return day, nil
}
