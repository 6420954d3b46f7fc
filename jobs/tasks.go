package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPaymentsRebuild regenerates the daily payment rollup from
	// verified sales.
	TaskPaymentsRebuild = "payments:rebuild"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// NewPaymentsRebuildTask constructs the rollup rebuild task.
func NewPaymentsRebuildTask() *asynq.Task {
	return asynq.NewTask(TaskPaymentsRebuild, nil)
}

// NewIdempotencyCleanupTask constructs the key cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
