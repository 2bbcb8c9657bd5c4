// internal/handlers/backup.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ammerola/stock-be/internal/core/ports"
)

// BackupHandler queues on-demand snapshot backups
type BackupHandler struct {
	requester ports.BackupRequester
	validate  *validator.Validate
	logger    *slog.Logger
}

// BackupRequest is the optional body of POST /backups
type BackupRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

// BackupResponse reports the queued job
type BackupResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(requester ports.BackupRequester, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		requester: requester,
		validate:  newValidator(),
		logger:    logger.With(slog.String("handler", "backup")),
	}
}

// RequestBackup handles POST /api/v1/backups
func (h *BackupHandler) RequestBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		if respondValidation(w, r, h.logger, err) {
			return
		}
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Reason == "" {
		req.Reason = "manual"
	}

	jobID, err := h.requester.RequestBackup(ctx, req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to queue snapshot backup",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusServiceUnavailable, "Failed to queue backup")
		return
	}

	respondJSON(w, h.logger, http.StatusAccepted, BackupResponse{JobID: jobID, Status: "queued"})
}
