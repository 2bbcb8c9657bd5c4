// internal/adapters/filestore/snapshot.go
package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ammerola/stock-be/internal/core/domain"
)

const snapshotFileMode = 0o644

// readSnapshot loads the collection from path. A missing file is an empty collection.
func readSnapshot(path string) ([]domain.InventoryItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.InventoryItem{}, nil
		}
		return nil, domain.NewStoreError("load", path, domain.ErrSnapshotIO, err)
	}

	items, err := decodeSnapshot(data)
	if err != nil {
		return nil, domain.NewStoreError("load", path, domain.ErrMalformedSnapshot, err)
	}
	return items, nil
}

// decodeSnapshot parses the JSON array format of the data file
func decodeSnapshot(data []byte) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}

// encodeSnapshot renders the collection the way it is stored on disk
func encodeSnapshot(items []domain.InventoryItem) ([]byte, error) {
	if items == nil {
		items = []domain.InventoryItem{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSnapshot replaces the file at path with the encoded collection.
// The data goes to a temp file in the same directory which is then renamed
// over path, so readers never observe a partially written snapshot.
func writeSnapshot(path string, items []domain.InventoryItem) error {
	data, err := encodeSnapshot(items)
	if err != nil {
		return domain.NewStoreError("save", path, domain.ErrSnapshotIO, fmt.Errorf("failed to encode snapshot: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return domain.NewStoreError("save", path, domain.ErrSnapshotIO, err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return domain.NewStoreError("save", path, domain.ErrSnapshotIO, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(snapshotFileMode); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return domain.NewStoreError("save", path, domain.ErrSnapshotIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return domain.NewStoreError("save", path, domain.ErrSnapshotIO, err)
	}
	return nil
}
