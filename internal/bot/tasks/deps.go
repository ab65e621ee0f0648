// Package tasks implements the scheduled tasks that keep the profile current.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/profilebot/internal/compose"
	"github.com/edgard/profilebot/internal/photo"
	"github.com/edgard/profilebot/internal/retry"
	"github.com/edgard/profilebot/internal/status"
)

// FieldComposer builds the profile fields for an instant.
type FieldComposer interface {
	Compose(ctx context.Context, now time.Time) compose.Fields
}

// ProfileUpdater pushes the fields to the account.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, first, last, bio string) error
}

// PhotoRotator applies the weekday profile photo.
type PhotoRotator interface {
	Rotate(ctx context.Context, now time.Time, force bool) (photo.Result, error)
}

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Composer FieldComposer
	Profile  ProfileUpdater
	Photos   PhotoRotator
	Clock    status.Clock
	Retry    retry.Policy
}
