// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-be/internal/core/domain"
)

const (
	TypeLowStockAlert  = "stock:low_alert"
	TypeSnapshotBackup = "snapshot:backup"
)

// Queue names, highest priority first
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// SnapshotBackupPayload represents the payload for backup jobs
type SnapshotBackupPayload struct {
	JobID       string    `json:"job_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewLowStockAlertTask builds the task published when an item drops to its minimum
func NewLowStockAlertTask(alert domain.LowStockAlert) (*asynq.Task, error) {
	b, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal low stock alert: %w", err)
	}
	return asynq.NewTask(TypeLowStockAlert, b), nil
}

// NewSnapshotBackupTask builds a backup task
func NewSnapshotBackupTask(payload SnapshotBackupPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup payload: %w", err)
	}
	return asynq.NewTask(TypeSnapshotBackup, b), nil
}
