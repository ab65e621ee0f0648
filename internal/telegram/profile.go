package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rivo/uniseg"
	"golang.org/x/time/rate"
)

// Field limits enforced by Telegram for business account profiles.
const (
	MaxFirstNameRunes = 64
	MaxLastNameRunes  = 64
	MaxBioRunes       = 140
)

// ErrConnectionDisabled is returned when the business connection exists but
// the owner has switched it off.
var ErrConnectionDisabled = errors.New("business connection is disabled")

// ProfileConfig configures a ProfileClient. APIURL and Token address the
// photo upload; every other call goes through the bot instance.
type ProfileConfig struct {
	APIURL               string
	Token                string
	BusinessConnectionID string
	RatePerSecond        float64
	Burst                int
	Timeout              time.Duration
}

// ProfileClient edits the owner's profile through a business connection.
// Every call waits on a shared rate limiter first.
type ProfileClient struct {
	bot          *bot.Bot
	connectionID string
	limiter      *rate.Limiter
	uploader     *photoUploader
	logger       *slog.Logger
}

// NewProfileClient creates a ProfileClient on top of b.
func NewProfileClient(b *bot.Bot, cfg ProfileConfig, logger *slog.Logger) *ProfileClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &ProfileClient{
		bot:          b,
		connectionID: cfg.BusinessConnectionID,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		uploader: &photoUploader{
			httpClient: &http.Client{Timeout: cfg.Timeout},
			endpoint:   strings.TrimRight(cfg.APIURL, "/") + "/bot" + cfg.Token + "/",
		},
		logger: logger.With("component", "profile_client"),
	}
}

// Clamp truncates s to at most n runes. It cuts between grapheme clusters so
// emoji sequences and combining marks are dropped whole.
func Clamp(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	var b strings.Builder
	runes := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		size := utf8.RuneCountInString(cluster)
		if runes+size > n {
			break
		}
		b.WriteString(cluster)
		runes += size
	}
	return b.String()
}

// UpdateProfile sets the account name and bio. Fields longer than the
// Telegram limits are truncated.
func (c *ProfileClient) UpdateProfile(ctx context.Context, first, last, bio string) error {
	first = Clamp(first, MaxFirstNameRunes)
	last = Clamp(last, MaxLastNameRunes)
	bio = Clamp(bio, MaxBioRunes)

	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.bot.SetBusinessAccountName(ctx, &bot.SetBusinessAccountNameParams{
		BusinessConnectionID: c.connectionID,
		FirstName:            first,
		LastName:             last,
	})
	if err != nil {
		return fmt.Errorf("failed to update name: %w", scrub(err))
	}

	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err = c.bot.SetBusinessAccountBio(ctx, &bot.SetBusinessAccountBioParams{
		BusinessConnectionID: c.connectionID,
		Bio:                  bio,
	})
	if err != nil {
		return fmt.Errorf("failed to update bio: %w", scrub(err))
	}

	c.logger.DebugContext(ctx, "Profile updated", "first_name", first, "last_name", last)
	return nil
}

// SetPhoto uploads the file at path as the static profile photo.
func (c *ProfileClient) SetPhoto(ctx context.Context, path string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.uploader.upload(ctx, c.connectionID, path); err != nil {
		return fmt.Errorf("failed to set profile photo: %w", scrub(err))
	}
	return nil
}

// RemovePhoto removes the current profile photo.
func (c *ProfileClient) RemovePhoto(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.bot.RemoveBusinessAccountProfilePhoto(ctx, &bot.RemoveBusinessAccountProfilePhotoParams{
		BusinessConnectionID: c.connectionID,
	})
	if err != nil {
		return fmt.Errorf("failed to remove profile photo: %w", scrub(err))
	}
	return nil
}

// VerifyConnection fetches the business connection and fails if it is
// unknown or disabled.
func (c *ProfileClient) VerifyConnection(ctx context.Context) (*models.BusinessConnection, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	conn, err := c.bot.GetBusinessConnection(ctx, &bot.GetBusinessConnectionParams{
		BusinessConnectionID: c.connectionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get business connection: %w", scrub(err))
	}
	if !conn.IsEnabled {
		return nil, fmt.Errorf("%w: %s", ErrConnectionDisabled, c.connectionID)
	}

	c.logger.InfoContext(ctx, "Business connection verified", "user_id", conn.User.ID)
	return conn, nil
}

func (c *ProfileClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// scrub drops the request URL, which carries the bot token, from
// transport errors.
func scrub(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("request failed: %w", urlErr.Err)
	}
	return err
}
