// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stock-be/internal/core/domain"
)

// InventoryService defines the application service port for inventory.
// This interface is implemented by the application service.
type InventoryService interface {
	AddItem(ctx context.Context, input AddItemInput) (*domain.InventoryItem, error)
	AddItems(ctx context.Context, inputs []AddItemInput) (int, error)
	AdjustQuantity(ctx context.Context, code string, delta int) (bool, error)
	RecordMovement(ctx context.Context, code string, movement domain.StockMovement) (bool, error)
	RemoveByCode(ctx context.Context, code string) (bool, error)
	RemoveByName(ctx context.Context, name string) (bool, error)
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	LowStock(ctx context.Context) ([]domain.InventoryItem, error)
	TotalValue(ctx context.Context) (decimal.Decimal, error)
	Summary(ctx context.Context) (*domain.StockSummary, error)
}

// AddItemInput holds the five user-supplied fields of a new item.
// It lives here to avoid an import cycle between services and handlers.
type AddItemInput struct {
	Code         string
	Name         string
	Quantity     int
	UnitPrice    decimal.Decimal
	MinimumStock int
}

// ToItem converts the input into a domain item without a timestamp
func (in AddItemInput) ToItem() domain.InventoryItem {
	return domain.InventoryItem{
		Code:         in.Code,
		Name:         in.Name,
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		MinimumStock: in.MinimumStock,
	}
}
