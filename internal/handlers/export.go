// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/core/ports"
)

const exportCacheTTL = 5 * time.Minute

var excelHeaders = []string{
	"Code", "Name", "Quantity", "Price", "Minimum Stock",
	"Stock Value", "Low Stock", "Last Updated",
}

// ExportParams defines parameters for export operations
type ExportParams struct {
	LowStockOnly bool `json:"low_stock_only"`
}

// JSONExportResponse represents the JSON export response structure
type JSONExportResponse struct {
	Inventory []domain.InventoryItem `json:"inventory"`
	Metadata  ExportMetadata         `json:"metadata"`
}

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate   time.Time `json:"export_date"`
	TotalItems   int       `json:"total_items"`
	TotalValue   string    `json:"total_value"`
	LowStockOnly bool      `json:"low_stock_only"`
}

// ExportHandler handles export operations
type ExportHandler struct {
	inventoryService ports.InventoryService
	cache            ports.CacheRepository
	now              func() time.Time
	logger           *slog.Logger
}

// NewExportHandler creates a new export handler. cache may be nil.
func NewExportHandler(inventoryService ports.InventoryService, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		inventoryService: inventoryService,
		cache:            cache,
		now:              time.Now,
		logger:           logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := h.parseExportParams(r)

	h.logger.InfoContext(ctx, "Starting Excel export", slog.Any("params", params))

	items, err := h.getInventoryData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to retrieve inventory data", slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(items)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to generate Excel file", slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("inventory_export_%s.xlsx", h.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed successfully",
		slog.Int("total_rows", len(items)),
		slog.String("filename", filename))
}

// ExportJSON handles GET /api/v1/export/json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := h.parseExportParams(r)

	cacheKey := ports.BuildKey(ports.PrefixExport, "json", h.getCacheKeyFromParams(params))
	if h.cache != nil {
		var cachedData []byte
		if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil && len(cachedData) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))

			if _, err := w.Write(cachedData); err != nil {
				h.logger.ErrorContext(ctx, "Failed to write cached JSON response", slog.String("error", err.Error()))
			}
			return
		}
	}

	items, err := h.getInventoryData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to retrieve inventory data", slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	response := JSONExportResponse{
		Inventory: items,
		Metadata: ExportMetadata{
			ExportDate:   h.now(),
			TotalItems:   len(items),
			TotalValue:   domain.TotalValue(items).StringFixed(2),
			LowStockOnly: params.LowStockOnly,
		},
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to marshal JSON response", slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	if h.cache != nil {
		if err := h.cache.SetWithTTL(ctx, cacheKey, responseData, exportCacheTTL); err != nil {
			h.logger.WarnContext(ctx, "Failed to cache JSON response", slog.String("error", err.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))

	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write JSON response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "JSON export completed successfully",
		slog.Int("total_rows", len(items)))
}

func (h *ExportHandler) parseExportParams(r *http.Request) *ExportParams {
	params := &ExportParams{}
	if v := r.URL.Query().Get("low_stock"); v != "" {
		params.LowStockOnly, _ = strconv.ParseBool(v)
	}
	return params
}

func (h *ExportHandler) getInventoryData(ctx context.Context, params *ExportParams) ([]domain.InventoryItem, error) {
	if params.LowStockOnly {
		return h.inventoryService.LowStock(ctx)
	}
	return h.inventoryService.ListItems(ctx)
}

// generateExcelFile creates an Excel file in memory from the items
func (h *ExportHandler) generateExcelFile(items []domain.InventoryItem) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range excelHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for i := range items {
		dataRow := sheet.AddRow()
		for _, value := range itemToExcelRow(&items[i]) {
			cell := dataRow.AddCell()
			cell.Value = value
		}
	}

	for i := range excelHeaders {
		sheet.SetColWidth(i+1, i+1, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func itemToExcelRow(item *domain.InventoryItem) []string {
	lastUpdated := ""
	if !item.LastUpdated.IsZero() {
		lastUpdated = item.LastUpdated.Format(domain.TimestampLayout)
	}
	return []string{
		item.Code,
		item.Name,
		strconv.Itoa(item.Quantity),
		item.UnitPrice.StringFixed(2),
		strconv.Itoa(item.MinimumStock),
		item.StockValue().StringFixed(2),
		boolLabel(item.IsLowStock()),
		lastUpdated,
	}
}

func boolLabel(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func (h *ExportHandler) getCacheKeyFromParams(params *ExportParams) string {
	if params.LowStockOnly {
		return "low_stock"
	}
	return "all"
}
