// internal/core/ports/inventory_repository.go
package ports

import (
	"context"

	"github.com/ammerola/stock-be/internal/core/domain"
)

// InventoryRepository defines the persistence port for inventory.
// It is implemented by the flat-file record store. Every mutation is
// persisted before it returns; the in-memory collection and the file
// never diverge after a failed write.
type InventoryRepository interface {
	// Items returns a copy of the collection in insertion order
	Items(ctx context.Context) ([]domain.InventoryItem, error)

	// Add stamps LastUpdated and appends the item; duplicate codes are allowed
	Add(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)

	// AdjustQuantity adds delta to every item with the given code and reports whether any matched
	AdjustQuantity(ctx context.Context, code string, delta int) (bool, error)

	// RemoveByCode and RemoveByName remove all matches and report whether the collection shrank
	RemoveByCode(ctx context.Context, code string) (bool, error)
	RemoveByName(ctx context.Context, name string) (bool, error)

	// Save rewrites the persisted mirror from the in-memory collection
	Save(ctx context.Context) error

	// Path is the location of the persisted mirror
	Path() string
}
