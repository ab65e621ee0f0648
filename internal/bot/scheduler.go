package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/profilebot/internal/bot/tasks"
	"github.com/edgard/profilebot/internal/config"
)

// Scheduler runs the registered tasks with gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	scheduled []string
}

// NewScheduler creates a scheduler whose cron expressions are evaluated in loc.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, loc *time.Location, taskMap map[string]tasks.ScheduledTaskFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
		cfg:       cfg,
		taskMap:   taskMap,
	}, nil
}

// jobDefinition picks a cron job when Cron is set and an interval job
// otherwise. Six-field expressions include seconds.
func jobDefinition(tc config.TaskConfig) (gocron.JobDefinition, string, error) {
	switch {
	case tc.Cron != "":
		withSeconds := len(strings.Fields(tc.Cron)) == 6
		return gocron.CronJob(tc.Cron, withSeconds), tc.Cron, nil
	case tc.Interval > 0:
		return gocron.DurationJob(tc.Interval), "every " + tc.Interval.String(), nil
	default:
		return nil, "", errors.New("task has neither interval nor cron")
	}
}

// Start schedules every enabled task and starts the scheduler. Tasks run
// with a context derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	var names []string
	if s.cfg != nil {
		for name := range s.cfg.Tasks {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	if len(names) == 0 {
		s.logger.Warn("No scheduler tasks configured")
	}

	for _, taskName := range names {
		taskConfig := s.cfg.Tasks[taskName]
		if !taskConfig.Enabled {
			s.logger.Info("Skipping disabled task", "task_name", taskName)
			continue
		}

		taskFunc, exists := s.taskMap[taskName]
		if !exists {
			s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", taskName)
			continue
		}

		def, schedule, err := jobDefinition(taskConfig)
		if err != nil {
			s.logger.Warn("Scheduled task has no schedule, skipping", "task_name", taskName, "error", err)
			continue
		}
		if taskConfig.Cron != "" && taskConfig.Interval > 0 {
			s.logger.Warn("Both cron and interval set, using cron",
				"task_name", taskName, "cron", taskConfig.Cron, "ignored_interval", taskConfig.Interval)
		}

		opts := []gocron.JobOption{gocron.WithName(taskName)}
		if taskConfig.RunOnStart {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		name, fn := taskName, taskFunc
		_, err = s.scheduler.NewJob(def, gocron.NewTask(func() {
			s.runTask(runCtx, name, fn)
		}), opts...)
		if err != nil {
			s.logger.Error("Failed to schedule task", "task_name", taskName, "schedule", schedule, "error", err)
			continue
		}

		s.logger.Info("Scheduled task", "task_name", taskName, "schedule", schedule, "run_on_start", taskConfig.RunOnStart)
		s.scheduled = append(s.scheduled, taskName)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", len(s.scheduled))
	return nil
}

// runTask runs one invocation. Failures are logged and never stop the scheduler.
func (s *Scheduler) runTask(ctx context.Context, name string, fn tasks.ScheduledTaskFunc) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Debug("Running scheduled task", "task_name", name)
	startTime := time.Now()

	if err := fn(ctx); err != nil {
		s.logger.Error("Scheduled task failed", "task_name", name, "error", err, "duration", time.Since(startTime))
		return
	}
	s.logger.Debug("Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
}

// Scheduled returns the names of the tasks that were scheduled by Start.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.scheduled)
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped")
	}

	s.running = false
	return err
}
