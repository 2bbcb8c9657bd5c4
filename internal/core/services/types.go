// internal/core/services/types.go
package services

import (
	"time"

	"github.com/ammerola/stock-be/internal/core/ports"
)

const defaultSummaryTTL = 5 * time.Minute

// Option configures an InventoryService
type Option func(*InventoryService)

// WithCache caches dashboard reads. Mutations invalidate the dashboard and export keys.
func WithCache(cache ports.CacheRepository, ttl time.Duration) Option {
	return func(s *InventoryService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithAlertPublisher enables low stock alerts after quantity adjustments
func WithAlertPublisher(alerts ports.AlertPublisher) Option {
	return func(s *InventoryService) {
		s.alerts = alerts
	}
}

// WithClock overrides the time source used for summaries and alerts
func WithClock(now func() time.Time) Option {
	return func(s *InventoryService) {
		s.now = now
	}
}
