// Package scheduler runs the configured background tasks on their intervals
// using gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/halsted/roomlog/internal/config"
	"github.com/halsted/roomlog/internal/tasks"
)

// Scheduler manages scheduled tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler over the registered task map. Tasks are
// not started until Start is called.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler(gocron.WithLogger(newGocronLogger(logger)))
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

// Start schedules all enabled tasks from the configuration and starts the
// scheduler. Unknown task names are skipped with a warning so a stale config
// entry cannot prevent startup.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	scheduled := 0
	if s.cfg != nil {
		for taskName, taskConfig := range s.cfg.Tasks {
			if !taskConfig.Enabled {
				s.logger.Info("skipping disabled task", "task_name", taskName)
				continue
			}
			taskFunc, exists := s.taskMap[taskName]
			if !exists {
				s.logger.Warn("configured task not found in registry, skipping", "task_name", taskName)
				continue
			}
			if taskConfig.Interval <= 0 {
				s.logger.Warn("task enabled with no interval, skipping", "task_name", taskName)
				continue
			}

			_, err := s.scheduler.NewJob(
				gocron.DurationJob(taskConfig.Interval),
				gocron.NewTask(
					func(ctx context.Context, name string) {
						s.logger.Info("running scheduled task", "task_name", name)
						start := time.Now()
						if taskErr := taskFunc(ctx); taskErr != nil {
							s.logger.Error("scheduled task failed", "task_name", name, "error", taskErr)
						}
						s.logger.Info("finished scheduled task",
							"task_name", name, "duration", time.Since(start))
					},
					context.Background(),
					taskName,
				),
				gocron.WithName(taskName),
			)
			if err != nil {
				s.logger.Error("failed to schedule task",
					"task_name", taskName, "interval", taskConfig.Interval, "error", err)
				continue
			}
			s.logger.Info("scheduled task", "task_name", taskName, "interval", taskConfig.Interval)
			scheduled++
		}
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("scheduler started", "tasks_scheduled", scheduled)
	return nil
}

// Stop gracefully shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	s.running = false
	s.logger.Info("scheduler stopped")
	return nil
}
