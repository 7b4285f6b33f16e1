// Package tasks defines the background task functions wired into the
// scheduler.
package tasks

import (
	"context"
	"time"

	"github.com/halsted/roomlog/internal/database"
	"github.com/halsted/roomlog/internal/livelog"
)

// ScheduledTaskFunc is the signature for a task runnable by the scheduler.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names as referenced by configuration.
const (
	TaskSQLMaintenance = "sql_maintenance"
	TaskLiveLogPrune   = "livelog_prune"
)

// NewTaskRegistry builds the map of named tasks. retention bounds the age of
// live log items kept by the pruning task.
func NewTaskRegistry(store database.Store, cache *livelog.Cache, retention time.Duration) map[string]ScheduledTaskFunc {
	return map[string]ScheduledTaskFunc{
		TaskSQLMaintenance: func(ctx context.Context) error {
			return store.RunSQLMaintenance(ctx)
		},
		TaskLiveLogPrune: func(ctx context.Context) error {
			cache.EvictOlderThan(time.Now().Add(-retention))
			return nil
		},
	}
}
