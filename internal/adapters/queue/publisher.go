// internal/adapters/queue/publisher.go
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/core/ports"
	"github.com/ammerola/stock-be/internal/workers"
)

// alertDedupWindow suppresses repeated alerts for the same code. Alerts are
// bucketed into fixed windows and share a task id inside a window.
const alertDedupWindow = 15 * time.Minute

// lowStockTaskID names the alert task for code in the window containing at
func lowStockTaskID(code string, at time.Time) string {
	return fmt.Sprintf("low_stock:%s:%d", code, at.Truncate(alertDedupWindow).Unix())
}

// Enqueuer is the subset of *asynq.Client used by the publisher
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher enqueues background tasks for the worker
type Publisher struct {
	client Enqueuer
	logger *slog.Logger
}

// Statically assert that *Publisher implements the publisher ports.
var (
	_ ports.AlertPublisher  = (*Publisher)(nil)
	_ ports.BackupRequester = (*Publisher)(nil)
)

// NewPublisher creates a new task publisher
func NewPublisher(client Enqueuer, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger.With(slog.String("component", "queue")),
	}
}

// PublishLowStock enqueues a low stock alert on the critical queue.
// A duplicate alert for the same code inside the dedup window is not an error.
func (p *Publisher) PublishLowStock(ctx context.Context, alert domain.LowStockAlert) error {
	task, err := workers.NewLowStockAlertTask(alert)
	if err != nil {
		return err
	}

	detectedAt := alert.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now()
	}

	// the completed task is retained so the id stays taken for the rest of the window
	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(workers.QueueCritical),
		asynq.MaxRetry(5),
		asynq.TaskID(lowStockTaskID(alert.Code, detectedAt)),
		asynq.Retention(alertDedupWindow),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			p.logger.DebugContext(ctx, "low stock alert already queued",
				slog.String("code", alert.Code))
			return nil
		}
		return fmt.Errorf("failed to enqueue low stock alert: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock alert queued",
		slog.String("task_id", info.ID),
		slog.String("code", alert.Code),
		slog.Int("quantity", alert.Quantity),
		slog.Int("minimum_stock", alert.MinimumStock))

	return nil
}

// RequestBackup enqueues an on-demand snapshot backup and returns the job id
func (p *Publisher) RequestBackup(ctx context.Context, reason string) (string, error) {
	payload := workers.SnapshotBackupPayload{
		JobID:       uuid.New().String(),
		Reason:      reason,
		RequestedAt: time.Now(),
	}

	task, err := workers.NewSnapshotBackupTask(payload)
	if err != nil {
		return "", err
	}

	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(workers.QueueLow),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue snapshot backup: %w", err)
	}

	p.logger.InfoContext(ctx, "snapshot backup queued",
		slog.String("task_id", info.ID),
		slog.String("job_id", payload.JobID),
		slog.String("reason", reason))

	return payload.JobID, nil
}
