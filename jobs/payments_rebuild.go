package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// PaymentsRebuilder regenerates the daily payment rollup.
type PaymentsRebuilder interface {
	RebuildAll(ctx context.Context) (int64, error)
}

// NewPaymentsRebuildHandler returns the handler for TaskPaymentsRebuild.
// The nightly run reconciles any drift between verified sales and day
// totals; the transactional path in sales keeps them aligned day to day.
func NewPaymentsRebuildHandler(rebuilder PaymentsRebuilder, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		days, err := rebuilder.RebuildAll(ctx)
		if err != nil {
			logger.Error("payments rebuild failed", slog.Any("error", err))
			return err
		}
		logger.Info("payments rebuild done", slog.Int64("days", days))
		return nil
	}
}
