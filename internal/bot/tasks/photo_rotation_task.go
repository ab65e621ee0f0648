package tasks

import (
	"context"
	"fmt"
)

func newPhotoRotationTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "photo_rotation")

	return func(ctx context.Context) error {
		res, err := deps.Photos.Rotate(ctx, deps.Clock(), false)
		if err != nil {
			return fmt.Errorf("photo rotation failed: %w", err)
		}
		log.InfoContext(ctx, "Photo rotation finished", "outcome", res.Outcome, "weekday", res.Weekday)
		return nil
	}
}
