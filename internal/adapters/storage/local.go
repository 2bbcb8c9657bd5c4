// internal/adapters/storage/local.go
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ammerola/stock-be/internal/core/ports"
)

var _ ports.FileStorage = (*LocalStorage)(nil)

// LocalStorage stores files under a base directory. Used when no bucket is configured.
type LocalStorage struct {
	basePath string
	logger   *slog.Logger
}

// NewLocalStorage creates a new local storage client
func NewLocalStorage(basePath string, logger *slog.Logger) *LocalStorage {
	return &LocalStorage{
		basePath: basePath,
		logger:   logger.With(slog.String("storage", "local")),
	}
}

// Upload writes body to basePath/key, creating intermediate directories
func (l *LocalStorage) Upload(ctx context.Context, key string, body []byte, _ string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	path := filepath.Join(l.basePath, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	l.logger.InfoContext(ctx, "file stored",
		slog.String("key", key),
		slog.String("path", path),
		slog.Int("size", len(body)))

	return path, nil
}
