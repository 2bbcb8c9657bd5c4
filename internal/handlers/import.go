// internal/handlers/import.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/core/ports"
	"github.com/ammerola/stock-be/internal/importer"
)

// ImportHandler handles spreadsheet and PDF imports
type ImportHandler struct {
	service      ports.InventoryService
	logger       *slog.Logger
	maxExcelSize int64
	maxPDFSize   int64
}

// ImportResponse reports how an uploaded file was applied
type ImportResponse struct {
	JobID    string              `json:"job_id"`
	Filename string              `json:"filename"`
	Rows     int                 `json:"rows"`
	Imported int                 `json:"imported"`
	Errors   []importer.RowError `json:"errors,omitempty"`
}

type parseFunc func(data []byte) (*importer.Result, error)

// NewImportHandler creates a new import handler. Sizes are in bytes.
func NewImportHandler(service ports.InventoryService, logger *slog.Logger, maxExcelSize, maxPDFSize int64) *ImportHandler {
	return &ImportHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "import")),
		maxExcelSize: maxExcelSize,
		maxPDFSize:   maxPDFSize,
	}
}

// ImportExcel handles POST /api/v1/import/excel
func (h *ImportHandler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	h.handleImport(w, r, h.maxExcelSize, []string{".xlsx"}, importer.ParseExcel)
}

// ImportPDF handles POST /api/v1/import/pdf
func (h *ImportHandler) ImportPDF(w http.ResponseWriter, r *http.Request) {
	h.handleImport(w, r, h.maxPDFSize, []string{".pdf"}, importer.ParsePDF)
}

func (h *ImportHandler) handleImport(w http.ResponseWriter, r *http.Request, maxSize int64, extensions []string, parse parseFunc) {
	ctx := r.Context()
	jobID := uuid.New().String()
	logger := h.logger.With(slog.String("job_id", jobID))

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !contains(extensions, ext) {
		respondError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("Only %s files are allowed", strings.Join(extensions, ", ")))
		return
	}

	if header.Size > maxSize {
		respondError(w, h.logger, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	if int64(len(data)) > maxSize {
		respondError(w, h.logger, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	logger.InfoContext(ctx, "processing import",
		slog.String("filename", header.Filename),
		slog.Int("size", len(data)))

	result, err := parse(data)
	if err != nil {
		logger.WarnContext(ctx, "failed to parse upload",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusUnprocessableEntity, "Failed to parse file")
		return
	}

	response := ImportResponse{
		JobID:    jobID,
		Filename: header.Filename,
		Rows:     result.Rows,
		Errors:   result.Errors,
	}

	if len(result.Inputs) > 0 {
		added, err := h.service.AddItems(ctx, result.Inputs)
		response.Imported = added
		if err != nil {
			if errors.Is(err, domain.ErrInvalidItem) {
				respondJSON(w, h.logger, http.StatusUnprocessableEntity, map[string]any{
					"error":  err.Error(),
					"import": response,
				})
				return
			}
			logger.ErrorContext(ctx, "failed to store imported items",
				slog.Int("imported", added),
				slog.String("error", err.Error()))
			respondError(w, h.logger, http.StatusInternalServerError, "Failed to store imported items")
			return
		}
	}

	logger.InfoContext(ctx, "import completed",
		slog.Int("rows", response.Rows),
		slog.Int("imported", response.Imported),
		slog.Int("rejected", len(response.Errors)))

	respondJSON(w, h.logger, http.StatusOK, response)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
