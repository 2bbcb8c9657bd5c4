// internal/workers/mux.go
package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-be/internal/pkg/logger"
)

// NewServeMux registers every task handler the worker serves
func NewServeMux(notifications *NotificationProcessor, backups *BackupProcessor, log *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(LoggingMiddleware(log))

	mux.HandleFunc(TypeLowStockAlert, notifications.HandleLowStockAlert)
	mux.HandleFunc(TypeSnapshotBackup, backups.HandleSnapshotBackup)

	return mux
}

// LoggingMiddleware tags the context with the task id and type and logs the outcome
func LoggingMiddleware(log *slog.Logger) asynq.MiddlewareFunc {
	log = log.With(slog.String("component", "worker"))

	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			taskID, _ := asynq.GetTaskID(ctx)
			ctx = logger.WithValue(ctx, logger.ContextKeyJobID, taskID)
			ctx = logger.WithValue(ctx, logger.ContextKeyTaskType, t.Type())

			start := time.Now()
			err := next.ProcessTask(ctx, t)
			duration := time.Since(start)

			if err != nil {
				log.ErrorContext(ctx, "task failed",
					slog.Duration("duration_ms", duration),
					slog.String("error", err.Error()))
				return err
			}

			log.DebugContext(ctx, "task completed", slog.Duration("duration_ms", duration))
			return nil
		})
	}
}
