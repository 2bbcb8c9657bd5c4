// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/core/ports"
)

// InventoryService handles inventory business logic
type InventoryService struct {
	repo     ports.InventoryRepository
	cache    ports.CacheRepository
	alerts   ports.AlertPublisher
	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service
func NewInventoryService(repo ports.InventoryRepository, logger *slog.Logger, opts ...Option) *InventoryService {
	s := &InventoryService{
		repo:     repo,
		cacheTTL: defaultSummaryTTL,
		now:      time.Now,
		logger:   logger.With(slog.String("service", "inventory")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem validates the input and appends a new item to the store
func (s *InventoryService) AddItem(ctx context.Context, input ports.AddItemInput) (*domain.InventoryItem, error) {
	item := input.ToItem()
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	added, err := s.repo.Add(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	s.invalidateCache(ctx)

	s.logger.InfoContext(ctx, "added inventory item",
		slog.String("code", added.Code),
		slog.String("name", added.Name),
		slog.Int("quantity", added.Quantity))

	return &added, nil
}

// AddItems validates every input before adding any of them. On a store
// failure it returns how many items were added before the failure.
func (s *InventoryService) AddItems(ctx context.Context, inputs []ports.AddItemInput) (int, error) {
	if len(inputs) == 0 {
		s.logger.InfoContext(ctx, "no items to add")
		return 0, nil
	}

	items := make([]domain.InventoryItem, len(inputs))
	for i, input := range inputs {
		items[i] = input.ToItem()
		if err := items[i].Validate(); err != nil {
			return 0, fmt.Errorf("validation failed for item %d (%s): %w", i+1, input.Code, err)
		}
	}

	added := 0
	for _, item := range items {
		if _, err := s.repo.Add(ctx, item); err != nil {
			if added > 0 {
				s.invalidateCache(ctx)
			}
			return added, fmt.Errorf("failed to add item %s: %w", item.Code, err)
		}
		added++
	}

	s.invalidateCache(ctx)

	s.logger.InfoContext(ctx, "added inventory items", slog.Int("count", added))
	return added, nil
}

// AdjustQuantity adds delta to every item with the given code. Items left at
// or below their minimum trigger a low stock alert.
func (s *InventoryService) AdjustQuantity(ctx context.Context, code string, delta int) (bool, error) {
	if strings.TrimSpace(code) == "" {
		return false, fmt.Errorf("validation failed: %w: code is required", domain.ErrInvalidItem)
	}

	found, err := s.repo.AdjustQuantity(ctx, code, delta)
	if err != nil {
		return false, fmt.Errorf("failed to adjust quantity: %w", err)
	}
	if !found {
		s.logger.DebugContext(ctx, "no item matched adjustment", slog.String("code", code))
		return false, nil
	}

	s.invalidateCache(ctx)

	s.logger.InfoContext(ctx, "adjusted inventory quantity",
		slog.String("code", code),
		slog.Int("delta", delta))

	s.publishLowStockAlerts(ctx, code)
	return true, nil
}

// RecordMovement applies an entry or exit of stock
func (s *InventoryService) RecordMovement(ctx context.Context, code string, movement domain.StockMovement) (bool, error) {
	delta, err := movement.Delta()
	if err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}
	return s.AdjustQuantity(ctx, code, delta)
}

// RemoveByCode removes every item with the given code
func (s *InventoryService) RemoveByCode(ctx context.Context, code string) (bool, error) {
	removed, err := s.repo.RemoveByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to remove items by code: %w", err)
	}
	if removed {
		s.invalidateCache(ctx)
		s.logger.InfoContext(ctx, "removed inventory items", slog.String("code", code))
	}
	return removed, nil
}

// RemoveByName removes every item with the given name
func (s *InventoryService) RemoveByName(ctx context.Context, name string) (bool, error) {
	removed, err := s.repo.RemoveByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to remove items by name: %w", err)
	}
	if removed {
		s.invalidateCache(ctx)
		s.logger.InfoContext(ctx, "removed inventory items", slog.String("name", name))
	}
	return removed, nil
}

// ListItems returns the current collection
func (s *InventoryService) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.repo.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// LowStock returns the items at or below their minimum, in store order
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return domain.LowStock(items), nil
}

// TotalValue returns the sum of quantity * price over the collection
func (s *InventoryService) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.TotalValue(items), nil
}

// Summary returns the dashboard aggregate, served from cache when one is configured
func (s *InventoryService) Summary(ctx context.Context) (*domain.StockSummary, error) {
	build := func() (interface{}, error) {
		items, err := s.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		return domain.Summarize(items, s.now()), nil
	}

	if s.cache == nil {
		value, err := build()
		if err != nil {
			return nil, err
		}
		summary := value.(domain.StockSummary)
		return &summary, nil
	}

	var summary domain.StockSummary
	key := ports.BuildKey(ports.PrefixDashboard, "summary")
	if err := s.cache.GetOrSet(ctx, key, &summary, build, s.cacheTTL); err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return &summary, nil
}

// publishLowStockAlerts never fails the adjustment; the store is already updated
func (s *InventoryService) publishLowStockAlerts(ctx context.Context, code string) {
	if s.alerts == nil {
		return
	}

	items, err := s.repo.Items(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read items for low stock check",
			slog.String("code", code),
			slog.String("error", err.Error()))
		return
	}

	now := s.now()
	for _, item := range items {
		if item.Code != code || !item.IsLowStock() {
			continue
		}
		if err := s.alerts.PublishLowStock(ctx, domain.NewLowStockAlert(item, now)); err != nil {
			s.logger.WarnContext(ctx, "failed to publish low stock alert",
				slog.String("code", code),
				slog.String("error", err.Error()))
		}
	}
}

func (s *InventoryService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	for _, prefix := range []ports.CacheKeyPrefix{ports.PrefixDashboard, ports.PrefixExport} {
		pattern := ports.BuildKey(prefix, "*")
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate cache pattern",
				slog.String("pattern", pattern),
				slog.String("error", err.Error()))
		}
	}
}
