package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/profilebot/internal/retry"
)

// newProfileUpdateTask composes the fields and pushes them. Composition
// and push are retried together so every attempt uses a fresh clock.
func newProfileUpdateTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "profile_update")

	return func(ctx context.Context) error {
		startTime := time.Now()

		err := retry.Do(ctx, deps.Retry, func(ctx context.Context) error {
			fields := deps.Composer.Compose(ctx, deps.Clock())
			if fields.Report.Degraded() {
				log.WarnContext(ctx, "Composed profile with fallbacks",
					"next_prayer", fields.Report.NextPrayer.Outcome,
					"hijri", fields.Report.Hijri.Outcome,
					"weather", fields.Report.Weather.Outcome)
			}
			if err := deps.Profile.UpdateProfile(ctx, fields.First, fields.Last, fields.Bio); err != nil {
				log.WarnContext(ctx, "Profile push attempt failed", "error", err)
				return err
			}
			log.InfoContext(ctx, "Profile updated", "first_name", fields.First, "last_name", fields.Last)
			return nil
		})
		if err != nil {
			return fmt.Errorf("profile update failed: %w", err)
		}

		log.DebugContext(ctx, "Profile update task completed", "duration", time.Since(startTime))
		return nil
	}
}
