package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the state database operations.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetPhotoState returns the last applied photo, or nil, nil if none was recorded.
	GetPhotoState(ctx context.Context) (*PhotoState, error)

	// SavePhotoState replaces the recorded photo state.
	SavePhotoState(ctx context.Context, state *PhotoState) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (s *sqlxStore) GetPhotoState(ctx context.Context) (*PhotoState, error) {
	const query = `
        SELECT weekday, file_name, applied_on, updated_at
        FROM photo_state
        WHERE id = 1
    `

	var state PhotoState
	err := s.db.GetContext(ctx, &state, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting photo state", "error", err)
		return nil, fmt.Errorf("failed to get photo state: %w", err)
	}
	return &state, nil
}

func (s *sqlxStore) SavePhotoState(ctx context.Context, state *PhotoState) error {
	if state == nil {
		return errors.New("photo state cannot be nil")
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}

	const query = `
        INSERT INTO photo_state (id, weekday, file_name, applied_on, updated_at)
        VALUES (1, :weekday, :file_name, :applied_on, :updated_at)
        ON CONFLICT(id) DO UPDATE SET
            weekday = excluded.weekday,
            file_name = excluded.file_name,
            applied_on = excluded.applied_on,
            updated_at = excluded.updated_at
    `

	if _, err := s.db.NamedExecContext(ctx, query, state); err != nil {
		s.logger.ErrorContext(ctx, "Error saving photo state", "weekday", state.Weekday, "error", err)
		return fmt.Errorf("failed to save photo state: %w", err)
	}

	s.logger.DebugContext(ctx, "Saved photo state", "weekday", state.Weekday, "applied_on", state.AppliedOn)
	return nil
}
