// internal/workers/backup_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/workers"
	"github.com/ammerola/stock-be/test/helpers"
	"github.com/ammerola/stock-be/test/mocks"
)

const snapshotJSON = `[
    {
        "code": "A1",
        "name": "Caneta azul",
        "quantity": 3,
        "price": 2.5,
        "minimum_stock": 1,
        "last_updated": "2025-01-02 03:04:05"
    }
]`

func backupTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := workers.NewSnapshotBackupTask(workers.SnapshotBackupPayload{
		JobID:       "job-1",
		Reason:      "scheduled",
		RequestedAt: time.Now(),
	})
	require.NoError(t, err)
	return task
}

func TestBackupKey(t *testing.T) {
	ts := time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "backups/2025/03/09/inventory_20250309_140507.json", workers.BackupKey(ts))
}

func TestBackupProcessor_HandleSnapshotBackup(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)

	tests := []struct {
		name        string
		dataFile    func(t *testing.T) string
		setupMocks  func(*mocks.MockFileStorage)
		wantErr     bool
		wantNoRetry bool
		wantErrIs   error
	}{
		{
			name:     "uploads_snapshot",
			dataFile: func(t *testing.T) string { return helpers.WriteDataFile(t, snapshotJSON) },
			setupMocks: func(m *mocks.MockFileStorage) {
				m.EXPECT().
					Upload(gomock.Any(), "backups/2025/03/09/inventory_20250309_140507.json", []byte(snapshotJSON), "application/json").
					Return("s3://stock/backups/2025/03/09/inventory_20250309_140507.json", nil)
			},
		},
		{
			name:       "missing_file_is_a_no_op",
			dataFile:   helpers.DataFilePath,
			setupMocks: func(m *mocks.MockFileStorage) {},
		},
		{
			name:        "malformed_file_is_not_archived",
			dataFile:    func(t *testing.T) string { return helpers.WriteDataFile(t, `{"code":`) },
			setupMocks:  func(m *mocks.MockFileStorage) {},
			wantErr:     true,
			wantNoRetry: true,
			wantErrIs:   domain.ErrMalformedSnapshot,
		},
		{
			name:     "upload_failure_is_retried",
			dataFile: func(t *testing.T) string { return helpers.WriteDataFile(t, "[]") },
			setupMocks: func(m *mocks.MockFileStorage) {
				m.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("access denied"))
			},
			wantErr: true,
		},
		{
			name:       "unreadable_path",
			dataFile:   func(t *testing.T) string { return t.TempDir() },
			setupMocks: func(m *mocks.MockFileStorage) {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			storage := mocks.NewMockFileStorage(ctrl)
			tt.setupMocks(storage)

			processor := workers.NewBackupProcessor(tt.dataFile(t), storage, helpers.TestLogger()).
				WithClock(helpers.FixedClock(now))

			err := processor.HandleSnapshotBackup(context.Background(), backupTask(t))

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantNoRetry {
				assert.ErrorIs(t, err, asynq.SkipRetry)
			} else {
				assert.NotErrorIs(t, err, asynq.SkipRetry)
			}
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}

func TestBackupProcessor_LeavesDataFileUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockFileStorage(ctrl)
	storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil)

	path := helpers.WriteDataFile(t, snapshotJSON)
	before, err := os.Stat(path)
	require.NoError(t, err)

	processor := workers.NewBackupProcessor(path, storage, helpers.TestLogger())
	require.NoError(t, processor.HandleSnapshotBackup(context.Background(), asynq.NewTask(workers.TypeSnapshotBackup, nil)))

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, before.Size(), after.Size())
}
