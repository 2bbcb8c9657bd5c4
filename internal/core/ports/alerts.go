// internal/core/ports/alerts.go
package ports

import (
	"context"

	"github.com/ammerola/stock-be/internal/core/domain"
)

// AlertPublisher hands low-stock alerts off to the background worker
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, alert domain.LowStockAlert) error
}

// FileStorage stores binary objects such as data file backups
type FileStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// BackupRequester asks the worker for an out-of-schedule snapshot backup
type BackupRequester interface {
	RequestBackup(ctx context.Context, reason string) (string, error)
}
