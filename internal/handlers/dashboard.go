package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stock-be/internal/core/ports"
)

const defaultTopItems = 10

// DashboardHandler handles dashboard operations
type DashboardHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service ports.InventoryService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "dashboard")),
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, summary)
}

// ValuedItem is one row of the stock value ranking
type ValuedItem struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// GetTopValue handles GET /api/v1/dashboard/top-value?limit=N
func (h *DashboardHandler) GetTopValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultTopItems
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			respondError(w, h.logger, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := h.service.ListItems(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load stock value ranking",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load stock value ranking")
		return
	}

	ranked := make([]ValuedItem, 0, len(items))
	for i := range items {
		ranked = append(ranked, ValuedItem{
			Code:       items[i].Code,
			Name:       items[i].Name,
			Quantity:   items[i].Quantity,
			StockValue: items[i].StockValue(),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].StockValue.GreaterThan(ranked[j].StockValue)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"items": ranked,
		"count": len(ranked),
	})
}
