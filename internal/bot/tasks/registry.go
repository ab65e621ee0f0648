package tasks

import (
	"context"

	"github.com/edgard/profilebot/internal/config"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context
// is cancelled when the scheduler stops.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the scheduled tasks keyed by the name used in
// the scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks[config.TaskProfileUpdate] = newProfileUpdateTask(deps)
	tasks[config.TaskPhotoRotation] = newPhotoRotationTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
