// Package photo rotates the profile photo by weekday.
package photo

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for validation
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/edgard/profilebot/internal/database"
)

// ErrInvalidImage is returned when the photo for the day cannot be decoded.
var ErrInvalidImage = errors.New("invalid image")

var weekdayFiles = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// FileStem returns the file name, without extension, used for d.
func FileStem(d time.Weekday) string {
	return weekdayFiles[d]
}

// Outcome describes what a rotation did.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped" // already applied today
	OutcomeMissing Outcome = "missing" // no file for the weekday
)

// Result is the outcome of one rotation.
type Result struct {
	Outcome Outcome
	Weekday string
	Path    string
}

// Uploader replaces the account's profile photo.
type Uploader interface {
	SetPhoto(ctx context.Context, path string) error
	RemovePhoto(ctx context.Context) error
}

// StateStore persists the last applied photo.
type StateStore interface {
	GetPhotoState(ctx context.Context) (*database.PhotoState, error)
	SavePhotoState(ctx context.Context, state *database.PhotoState) error
}

// Rotator applies the photo for the current weekday. Rotations are
// serialized so a command and the scheduled task never interleave.
type Rotator struct {
	dir      string
	ext      string
	uploader Uploader
	store    StateStore
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewRotator creates a Rotator reading {dir}/{weekday}{ext}. store may be nil,
// in which case every rotation uploads.
func NewRotator(dir, ext string, uploader Uploader, store StateStore, logger *slog.Logger) *Rotator {
	if logger == nil {
		logger = slog.Default()
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Rotator{
		dir:      dir,
		ext:      ext,
		uploader: uploader,
		store:    store,
		logger:   logger.With("component", "photo_rotator"),
	}
}

// PathFor returns the photo file used on the weekday of now.
func (r *Rotator) PathFor(now time.Time) string {
	return filepath.Join(r.dir, FileStem(now.Weekday())+r.ext)
}

// Rotate applies the photo for now's weekday. Unless force is set, a
// rotation for a date that was already applied does nothing.
func (r *Rotator) Rotate(ctx context.Context, now time.Time, force bool) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	weekday := FileStem(now.Weekday())
	path := r.PathFor(now)
	appliedOn := now.Format(time.DateOnly)
	res := Result{Weekday: weekday, Path: path}
	log := r.logger.With("weekday", weekday, "path", path)

	if !force && r.appliedOn(ctx, appliedOn) {
		log.DebugContext(ctx, "Photo already applied today, skipping")
		res.Outcome = OutcomeSkipped
		return res, nil
	}

	if err := validateImage(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.WarnContext(ctx, "Photo for today not found, skipping")
			res.Outcome = OutcomeMissing
			return res, nil
		}
		return res, err
	}

	if err := r.uploader.RemovePhoto(ctx); err != nil {
		log.WarnContext(ctx, "Failed to remove current photo, continuing", "error", err)
	}
	if err := r.uploader.SetPhoto(ctx, path); err != nil {
		return res, fmt.Errorf("failed to apply %s photo: %w", weekday, err)
	}
	res.Outcome = OutcomeApplied
	log.InfoContext(ctx, "Profile photo updated")

	if r.store != nil {
		state := &database.PhotoState{
			Weekday:   weekday,
			FileName:  filepath.Base(path),
			AppliedOn: appliedOn,
		}
		if err := r.store.SavePhotoState(ctx, state); err != nil {
			return res, fmt.Errorf("photo applied but state not saved: %w", err)
		}
	}
	return res, nil
}

func (r *Rotator) appliedOn(ctx context.Context, date string) bool {
	if r.store == nil {
		return false
	}
	state, err := r.store.GetPhotoState(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to read photo state, rotating anyway", "error", err)
		return false
	}
	return state != nil && state.AppliedOn == date
}

func validateImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidImage, filepath.Base(path), err)
	}
	return nil
}
