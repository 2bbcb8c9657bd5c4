// internal/workers/backup_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/core/ports"
)

// BackupProcessor copies the data file to object storage
type BackupProcessor struct {
	dataFile string
	storage  ports.FileStorage
	now      func() time.Time
	logger   *slog.Logger
}

// NewBackupProcessor creates a new backup processor
func NewBackupProcessor(dataFile string, storage ports.FileStorage, logger *slog.Logger) *BackupProcessor {
	return &BackupProcessor{
		dataFile: dataFile,
		storage:  storage,
		now:      time.Now,
		logger:   logger.With(slog.String("processor", "backup")),
	}
}

// WithClock overrides the clock used for backup keys
func (p *BackupProcessor) WithClock(now func() time.Time) *BackupProcessor {
	p.now = now
	return p
}

// BackupKey returns the object key for a snapshot taken at t
func BackupKey(t time.Time) string {
	return fmt.Sprintf("backups/%s/inventory_%s.json", t.Format("2006/01/02"), t.Format("20060102_150405"))
}

// HandleSnapshotBackup processes snapshot:backup tasks. A missing data file
// means there is nothing to archive; a malformed one is not retried.
func (p *BackupProcessor) HandleSnapshotBackup(ctx context.Context, t *asynq.Task) error {
	var payload SnapshotBackupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	logger := p.logger.With(
		slog.String("job_id", payload.JobID),
		slog.String("reason", payload.Reason))

	data, err := os.ReadFile(p.dataFile)
	if errors.Is(err, fs.ErrNotExist) {
		logger.InfoContext(ctx, "data file does not exist yet, nothing to back up",
			slog.String("path", p.dataFile))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}

	var items []domain.InventoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.ErrorContext(ctx, "refusing to archive malformed data file",
			slog.String("path", p.dataFile),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v: %w", domain.ErrMalformedSnapshot, err, asynq.SkipRetry)
	}

	key := BackupKey(p.now())
	location, err := p.storage.Upload(ctx, key, data, "application/json")
	if err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	logger.InfoContext(ctx, "snapshot archived",
		slog.String("key", key),
		slog.String("location", location),
		slog.Int("items", len(items)),
		slog.Int("bytes", len(data)))
	return nil
}
