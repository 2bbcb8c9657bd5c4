// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/core/ports"
)

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	service  ports.InventoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger.With(slog.String("handler", "inventory")),
	}
}

// ItemListResponse wraps a list of items
type ItemListResponse struct {
	Items []domain.InventoryItem `json:"items"`
	Count int                    `json:"count"`
}

// ListInventory handles GET /api/v1/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.service.ListItems(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list inventory items",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list inventory items")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ItemListResponse{Items: items, Count: len(items)})
}

// CreateInventory handles POST /api/v1/inventory
func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		if !respondValidation(w, r, h.logger, err) {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		}
		return
	}

	item, err := h.service.AddItem(ctx, req.ToInput())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidItem) {
			respondError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "failed to create inventory item",
			slog.String("code", req.Code),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create inventory item")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, item)
}

// RecordMovement handles POST /api/v1/inventory/{code}/movements
func (h *InventoryHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		if !respondValidation(w, r, h.logger, err) {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		}
		return
	}

	var (
		found bool
		err   error
	)
	switch {
	case req.Delta != nil:
		found, err = h.service.AdjustQuantity(ctx, code, *req.Delta)
	case req.Type != "":
		found, err = h.service.RecordMovement(ctx, code, domain.StockMovement{
			Type:     domain.MovementType(req.Type),
			Quantity: req.Quantity,
		})
	default:
		respondError(w, h.logger, http.StatusBadRequest, "Either delta or type and quantity is required")
		return
	}

	if err != nil {
		if errors.Is(err, domain.ErrInvalidItem) {
			respondError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "failed to record stock movement",
			slog.String("code", code),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to record stock movement")
		return
	}

	if !found {
		respondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("No inventory item with code %s", code))
		return
	}

	items, err := h.service.ListItems(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load adjusted items",
			slog.String("code", code),
			slog.String("error", err.Error()))
		respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Stock movement recorded"})
		return
	}

	adjusted := make([]domain.InventoryItem, 0, 1)
	for _, item := range items {
		if item.Code == code {
			adjusted = append(adjusted, item)
		}
	}
	respondJSON(w, h.logger, http.StatusOK, ItemListResponse{Items: adjusted, Count: len(adjusted)})
}

// RemoveByCode handles DELETE /api/v1/inventory/code/{code}
func (h *InventoryHandler) RemoveByCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	removed, err := h.service.RemoveByCode(ctx, code)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to remove inventory items",
			slog.String("code", code),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to remove inventory items")
		return
	}
	if !removed {
		respondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("No inventory item with code %s", code))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Inventory items removed successfully",
		"code":    code,
	})
}

// RemoveByName handles DELETE /api/v1/inventory/name/{name}
func (h *InventoryHandler) RemoveByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	removed, err := h.service.RemoveByName(ctx, name)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to remove inventory items",
			slog.String("name", name),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to remove inventory items")
		return
	}
	if !removed {
		respondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("No inventory item named %s", name))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Inventory items removed successfully",
		"name":    name,
	})
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.service.LowStock(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query low stock",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to query low stock")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ItemListResponse{Items: items, Count: len(items)})
}

// TotalValue handles GET /api/v1/inventory/value
func (h *InventoryHandler) TotalValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.service.TotalValue(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute total value",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to compute total value")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"total_value": total.StringFixed(2),
	})
}

// Request DTOs

// CreateInventoryRequest represents the request body for adding an item
type CreateInventoryRequest struct {
	Code         string          `json:"code" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Quantity     int             `json:"quantity" validate:"min=0"`
	Price        decimal.Decimal `json:"price"`
	MinimumStock int             `json:"minimum_stock" validate:"min=0"`
}

// ToInput converts the request to a service input
func (r CreateInventoryRequest) ToInput() ports.AddItemInput {
	return ports.AddItemInput{
		Code:         strings.TrimSpace(r.Code),
		Name:         strings.TrimSpace(r.Name),
		Quantity:     r.Quantity,
		UnitPrice:    r.Price,
		MinimumStock: r.MinimumStock,
	}
}

// MovementRequest records an entry or exit, or a raw signed delta
type MovementRequest struct {
	Type     string `json:"type" validate:"omitempty,oneof=entry exit"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
	Delta    *int   `json:"delta,omitempty"`
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
