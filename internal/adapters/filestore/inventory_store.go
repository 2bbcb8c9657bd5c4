// internal/adapters/filestore/inventory_store.go
package filestore

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/core/ports"
)

// InventoryStore keeps the inventory collection in memory and mirrors it to a
// single JSON file. Every mutation is computed on a copy, written to disk and
// only then made visible, so a failed write leaves both memory and disk as
// they were.
type InventoryStore struct {
	path   string
	now    func() time.Time
	logger *slog.Logger

	mu    sync.RWMutex
	items []domain.InventoryItem
}

// Statically assert that *InventoryStore implements the InventoryRepository interface.
var _ ports.InventoryRepository = (*InventoryStore)(nil)

// Option configures an InventoryStore
type Option func(*InventoryStore)

// WithClock overrides the time source used for LastUpdated
func WithClock(now func() time.Time) Option {
	return func(s *InventoryStore) {
		s.now = now
	}
}

// NewInventoryStore loads the collection from path. A missing file yields an
// empty store; an unreadable or malformed file is returned as a *domain.StoreError.
func NewInventoryStore(path string, logger *slog.Logger, opts ...Option) (*InventoryStore, error) {
	s := &InventoryStore{
		path:   path,
		now:    time.Now,
		logger: logger.With(slog.String("component", "filestore"), slog.String("path", path)),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := readSnapshot(path)
	if err != nil {
		s.logger.Error("failed to load inventory snapshot", slog.String("error", err.Error()))
		return nil, err
	}
	s.items = items

	s.logger.Info("inventory snapshot loaded", slog.Int("items", len(items)))
	return s, nil
}

// Path returns the location of the data file
func (s *InventoryStore) Path() string {
	return s.path
}

// Items returns a copy of the collection in insertion order
func (s *InventoryStore) Items(ctx context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.items), nil
}

// Save rewrites the data file from the in-memory collection
func (s *InventoryStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, "save", s.items)
}

// Add stamps LastUpdated, appends the item and persists the collection.
// Codes are not checked for uniqueness.
func (s *InventoryStore) Add(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.Touch(s.now())

	next := make([]domain.InventoryItem, len(s.items), len(s.items)+1)
	copy(next, s.items)
	next = append(next, item)

	if err := s.commit(ctx, "add", next); err != nil {
		return domain.InventoryItem{}, err
	}

	s.logger.DebugContext(ctx, "item added",
		slog.String("code", item.Code),
		slog.Int("quantity", item.Quantity))

	return item, nil
}

// AdjustQuantity adds delta to the quantity of every item with the given code
// and refreshes their LastUpdated. Nothing is written when no item matches.
func (s *InventoryStore) AdjustQuantity(ctx context.Context, code string, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := slices.Clone(s.items)
	matched := 0
	for i := range next {
		if next[i].Code != code {
			continue
		}
		next[i].Quantity += delta
		next[i].Touch(now)
		matched++
	}

	if matched == 0 {
		return false, nil
	}

	if err := s.commit(ctx, "adjust", next); err != nil {
		return false, err
	}

	s.logger.DebugContext(ctx, "quantity adjusted",
		slog.String("code", code),
		slog.Int("delta", delta),
		slog.Int("matched", matched))

	return true, nil
}

// RemoveByCode removes every item with the given code
func (s *InventoryStore) RemoveByCode(ctx context.Context, code string) (bool, error) {
	return s.removeWhere(ctx, "remove_by_code", func(item domain.InventoryItem) bool {
		return item.Code == code
	})
}

// RemoveByName removes every item with the given name
func (s *InventoryStore) RemoveByName(ctx context.Context, name string) (bool, error) {
	return s.removeWhere(ctx, "remove_by_name", func(item domain.InventoryItem) bool {
		return item.Name == name
	})
}

// removeWhere persists even when nothing matched; the result reports whether the collection shrank
func (s *InventoryStore) removeWhere(ctx context.Context, op string, match func(domain.InventoryItem) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		if !match(item) {
			next = append(next, item)
		}
	}

	if err := s.commit(ctx, op, next); err != nil {
		return false, err
	}

	removed := len(s.items) - len(next)
	s.logger.DebugContext(ctx, "items removed",
		slog.String("op", op),
		slog.Int("removed", removed))

	return removed > 0, nil
}

// commit must be called with mu held
func (s *InventoryStore) commit(ctx context.Context, op string, next []domain.InventoryItem) error {
	if err := writeSnapshot(s.path, next); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist inventory",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return err
	}
	s.items = next
	return nil
}
