package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/profilebot/internal/compose"
	"github.com/edgard/profilebot/internal/config"
	"github.com/edgard/profilebot/internal/photo"
	"github.com/edgard/profilebot/internal/status"
)

// FieldComposer builds the profile fields for an instant.
type FieldComposer interface {
	Compose(ctx context.Context, now time.Time) compose.Fields
}

// PhotoRotator applies the weekday profile photo.
type PhotoRotator interface {
	Rotate(ctx context.Context, now time.Time, force bool) (photo.Result, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Composer FieldComposer
	Photos   PhotoRotator
	Clock    status.Clock
}
