// internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

// respondValidation writes field-level validation failures. It reports false
// when err is not a validator error so the caller can fall back to a generic message.
func respondValidation(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) bool {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false
	}

	errorResponse := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}

	logger.WarnContext(r.Context(), "validation errors occurred", slog.Any("errors", errorResponse))
	respondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
	return true
}

// newValidator reports JSON field names instead of Go field names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}
