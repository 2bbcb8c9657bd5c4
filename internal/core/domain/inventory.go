// internal/core/domain/inventory.go
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the on-disk format of LastUpdated
const TimestampLayout = "2006-01-02 15:04:05"

// MovementType represents the direction of a stock movement
type MovementType string

// Movement constants
const (
	MovementEntry MovementType = "entry"
	MovementExit  MovementType = "exit"
)

// InventoryItem represents a single inventory record
type InventoryItem struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
	MinimumStock int             `json:"minimum_stock"`
	LastUpdated  time.Time       `json:"last_updated"`
}

// itemRecord is the persisted shape of an InventoryItem
type itemRecord struct {
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Quantity     int         `json:"quantity"`
	Price        json.Number `json:"price"`
	MinimumStock int         `json:"minimum_stock"`
	LastUpdated  string      `json:"last_updated"`
}

// MarshalJSON writes the price as a bare number and the timestamp in TimestampLayout
func (i InventoryItem) MarshalJSON() ([]byte, error) {
	rec := itemRecord{
		Code:         i.Code,
		Name:         i.Name,
		Quantity:     i.Quantity,
		Price:        json.Number(i.UnitPrice.String()),
		MinimumStock: i.MinimumStock,
	}
	if !i.LastUpdated.IsZero() {
		rec.LastUpdated = i.LastUpdated.Format(TimestampLayout)
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads the persisted record format
func (i *InventoryItem) UnmarshalJSON(data []byte) error {
	var rec itemRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	price := decimal.Zero
	if rec.Price != "" {
		p, err := decimal.NewFromString(rec.Price.String())
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", rec.Price, err)
		}
		price = p
	}

	var updated time.Time
	if rec.LastUpdated != "" {
		t, err := time.ParseInLocation(TimestampLayout, rec.LastUpdated, time.Local)
		if err != nil {
			return fmt.Errorf("invalid last_updated %q: %w", rec.LastUpdated, err)
		}
		updated = t
	}

	*i = InventoryItem{
		Code:         rec.Code,
		Name:         rec.Name,
		Quantity:     rec.Quantity,
		UnitPrice:    price,
		MinimumStock: rec.MinimumStock,
		LastUpdated:  updated,
	}
	return nil
}

// Validate performs domain validation on the inventory item.
// The record store itself accepts anything; callers that take user input run this first.
func (i *InventoryItem) Validate() error {
	if strings.TrimSpace(i.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidItem)
	}
	// codes are addressed as a single URL path segment
	if strings.Contains(i.Code, "/") {
		return fmt.Errorf("%w: code cannot contain '/'", ErrInvalidItem)
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if i.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidItem)
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidItem)
	}
	if i.MinimumStock < 0 {
		return fmt.Errorf("%w: minimum_stock cannot be negative", ErrInvalidItem)
	}
	return nil
}

// IsLowStock reports whether the quantity is at or below the minimum threshold
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.MinimumStock
}

// StockValue returns quantity * unit price
func (i *InventoryItem) StockValue() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Touch refreshes LastUpdated at second resolution, matching the persisted format
func (i *InventoryItem) Touch(now time.Time) {
	i.LastUpdated = now.Truncate(time.Second)
}

// StockMovement is an entry or exit of stock for one product code
type StockMovement struct {
	Type     MovementType `json:"type"`
	Quantity int          `json:"quantity"`
}

// Delta converts the movement into a signed quantity change
func (m StockMovement) Delta() (int, error) {
	if m.Quantity < 1 {
		return 0, fmt.Errorf("%w: movement quantity must be at least 1", ErrInvalidItem)
	}
	switch m.Type {
	case MovementEntry:
		return m.Quantity, nil
	case MovementExit:
		return -m.Quantity, nil
	default:
		return 0, fmt.Errorf("%w: unknown movement type %q", ErrInvalidItem, m.Type)
	}
}

// LowStock returns the items whose quantity is at or below their minimum, in order
func LowStock(items []InventoryItem) []InventoryItem {
	low := make([]InventoryItem, 0)
	for _, item := range items {
		if item.IsLowStock() {
			low = append(low, item)
		}
	}
	return low
}

// TotalValue sums quantity * unit price over all items
func TotalValue(items []InventoryItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].StockValue())
	}
	return total
}

// StockSummary aggregates the collection for the dashboard
type StockSummary struct {
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
	LowStockItems []InventoryItem `json:"low_stock_items"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// Summarize builds a StockSummary from a snapshot of the collection
func Summarize(items []InventoryItem, now time.Time) StockSummary {
	low := LowStock(items)
	quantity := 0
	for _, item := range items {
		quantity += item.Quantity
	}
	return StockSummary{
		TotalItems:    len(items),
		TotalQuantity: quantity,
		TotalValue:    TotalValue(items),
		LowStockCount: len(low),
		LowStockItems: low,
		GeneratedAt:   now,
	}
}

// LowStockAlert is published when an adjustment leaves an item at or below its minimum
type LowStockAlert struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	MinimumStock int       `json:"minimum_stock"`
	DetectedAt   time.Time `json:"detected_at"`
}

// NewLowStockAlert builds an alert from an item
func NewLowStockAlert(item InventoryItem, now time.Time) LowStockAlert {
	return LowStockAlert{
		Code:         item.Code,
		Name:         item.Name,
		Quantity:     item.Quantity,
		MinimumStock: item.MinimumStock,
		DetectedAt:   now,
	}
}
