package filestore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-be/internal/adapters/filestore"
	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/test/helpers"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.Local)

func newStore(t *testing.T, path string) *filestore.InventoryStore {
	t.Helper()
	store, err := filestore.NewInventoryStore(path, helpers.TestLogger(), filestore.WithClock(helpers.FixedClock(fixedNow)))
	require.NoError(t, err)
	return store
}

func item(code, name string, qty int, price string, minimum int) domain.InventoryItem {
	return domain.InventoryItem{
		Code:         code,
		Name:         name,
		Quantity:     qty,
		UnitPrice:    decimal.RequireFromString(price),
		MinimumStock: minimum,
	}
}

func TestNewInventoryStore_Load(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T) string
		wantCount int
		wantKind  error
	}{
		{
			name:      "missing_file_yields_empty_store",
			setup:     helpers.DataFilePath,
			wantCount: 0,
		},
		{
			name: "empty_array",
			setup: func(t *testing.T) string {
				return helpers.WriteDataFile(t, "[]")
			},
			wantCount: 0,
		},
		{
			name: "existing_records",
			setup: func(t *testing.T) string {
				return helpers.WriteDataFile(t, `[
					{"code":"A1","name":"Lapis","quantity":5,"price":1.5,"minimum_stock":2,"last_updated":"2024-12-01 10:00:00"},
					{"code":"A2","name":"Borracha","quantity":0,"price":0.75,"minimum_stock":1,"last_updated":"2024-12-01 10:05:00"}
				]`)
			},
			wantCount: 2,
		},
		{
			name: "malformed_json",
			setup: func(t *testing.T) string {
				return helpers.WriteDataFile(t, `[{"code":`)
			},
			wantKind: domain.ErrMalformedSnapshot,
		},
		{
			name: "empty_file_is_malformed",
			setup: func(t *testing.T) string {
				return helpers.WriteDataFile(t, "")
			},
			wantKind: domain.ErrMalformedSnapshot,
		},
		{
			name: "bad_timestamp_is_malformed",
			setup: func(t *testing.T) string {
				return helpers.WriteDataFile(t, `[{"code":"A","name":"B","quantity":1,"price":1,"minimum_stock":0,"last_updated":"01/02/2024"}]`)
			},
			wantKind: domain.ErrMalformedSnapshot,
		},
		{
			name: "unreadable_path",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantKind: domain.ErrSnapshotIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)

			store, err := filestore.NewInventoryStore(path, helpers.TestLogger())

			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)
				var storeErr *domain.StoreError
				require.ErrorAs(t, err, &storeErr)
				assert.Equal(t, path, storeErr.Path)
				assert.Nil(t, store)
				return
			}

			require.NoError(t, err)
			items, err := store.Items(context.Background())
			require.NoError(t, err)
			assert.Len(t, items, tt.wantCount)
			assert.Equal(t, path, store.Path())
		})
	}
}

func TestInventoryStore_LoadParsesFields(t *testing.T) {
	path := helpers.WriteDataFile(t, `[{"code":"A1","name":"Lapis","quantity":5,"price":1.5,"minimum_stock":2,"last_updated":"2024-12-01 10:00:00"}]`)
	store := newStore(t, path)

	items, err := store.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	helpers.CompareInventoryItems(t, domain.InventoryItem{
		Code:         "A1",
		Name:         "Lapis",
		Quantity:     5,
		UnitPrice:    decimal.RequireFromString("1.5"),
		MinimumStock: 2,
		LastUpdated:  time.Date(2024, 12, 1, 10, 0, 0, 0, time.Local),
	}, items[0])
}

func TestInventoryStore_Add(t *testing.T) {
	ctx := context.Background()
	path := helpers.DataFilePath(t)
	store := newStore(t, path)

	added, err := store.Add(ctx, item("A1", "Widget", 3, "2.50", 1))
	require.NoError(t, err)
	assert.True(t, added.LastUpdated.Equal(fixedNow.Truncate(time.Second)))

	// duplicate codes are accepted
	_, err = store.Add(ctx, item("A1", "Widget bis", 1, "1", 0))
	require.NoError(t, err)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Widget", items[0].Name)
	assert.Equal(t, "Widget bis", items[1].Name)

	// a fresh store sees the same collection
	reloaded := newStore(t, path)
	reloadedItems, err := reloaded.Items(ctx)
	require.NoError(t, err)
	helpers.CompareInventoryCollections(t, items, reloadedItems)
}

func TestInventoryStore_AddWritesDocumentedFormat(t *testing.T) {
	ctx := context.Background()
	path := helpers.DataFilePath(t)
	store := newStore(t, path)

	_, err := store.Add(ctx, item("A1", "Widget & Co", 3, "2.50", 1))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "A1", raw[0]["code"])
	assert.Equal(t, "Widget & Co", raw[0]["name"])
	assert.Equal(t, float64(3), raw[0]["quantity"])
	assert.Equal(t, 2.5, raw[0]["price"])
	assert.Equal(t, float64(1), raw[0]["minimum_stock"])
	assert.Equal(t, fixedNow.Format(domain.TimestampLayout), raw[0]["last_updated"])
	assert.Contains(t, string(data), "Widget & Co")
}

func TestInventoryStore_AdjustQuantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		code        string
		delta       int
		wantFound   bool
		wantQtys    []int
		wantTouched []bool
	}{
		{
			name:        "adjusts_single_match",
			code:        "B",
			delta:       -4,
			wantFound:   true,
			wantQtys:    []int{5, 6, 5},
			wantTouched: []bool{false, true, false},
		},
		{
			name:        "adjusts_every_duplicate",
			code:        "A",
			delta:       3,
			wantFound:   true,
			wantQtys:    []int{8, 10, 8},
			wantTouched: []bool{true, false, true},
		},
		{
			name:        "can_go_negative",
			code:        "B",
			delta:       -20,
			wantFound:   true,
			wantQtys:    []int{5, -10, 5},
			wantTouched: []bool{false, true, false},
		},
		{
			name:        "unknown_code",
			code:        "Z",
			delta:       1,
			wantFound:   false,
			wantQtys:    []int{5, 10, 5},
			wantTouched: []bool{false, false, false},
		},
	}

	original := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := helpers.WriteDataFile(t, `[
				{"code":"A","name":"First","quantity":5,"price":1,"minimum_stock":0,"last_updated":"2024-01-01 08:00:00"},
				{"code":"B","name":"Second","quantity":10,"price":1,"minimum_stock":0,"last_updated":"2024-01-01 08:00:00"},
				{"code":"A","name":"Third","quantity":5,"price":1,"minimum_stock":0,"last_updated":"2024-01-01 08:00:00"}
			]`)
			store := newStore(t, path)
			before, err := os.Stat(path)
			require.NoError(t, err)

			found, err := store.AdjustQuantity(ctx, tt.code, tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)

			items, err := store.Items(ctx)
			require.NoError(t, err)
			for i, it := range items {
				assert.Equal(t, tt.wantQtys[i], it.Quantity, "item %d", i)
				if tt.wantTouched[i] {
					assert.True(t, it.LastUpdated.Equal(fixedNow.Truncate(time.Second)), "item %d not touched", i)
				} else {
					assert.True(t, it.LastUpdated.Equal(original), "item %d touched", i)
				}
			}

			reloaded := newStore(t, path)
			reloadedItems, err := reloaded.Items(ctx)
			require.NoError(t, err)
			helpers.CompareInventoryCollections(t, items, reloadedItems)

			if !tt.wantFound {
				after, err := os.Stat(path)
				require.NoError(t, err)
				assert.True(t, os.SameFile(before, after), "data file rewritten without a match")
			}
		})
	}
}

func TestInventoryStore_Remove(t *testing.T) {
	ctx := context.Background()
	seed := `[
		{"code":"A","name":"Caneta","quantity":1,"price":1,"minimum_stock":0,"last_updated":"2024-01-01 08:00:00"},
		{"code":"B","name":"Lapis","quantity":1,"price":1,"minimum_stock":0,"last_updated":"2024-01-01 08:00:00"},
		{"code":"A","name":"Caneta vermelha","quantity":1,"price":1,"minimum_stock":0,"last_updated":"2024-01-01 08:00:00"},
		{"code":"C","name":"Lapis","quantity":1,"price":1,"minimum_stock":0,"last_updated":"2024-01-01 08:00:00"}
	]`

	tests := []struct {
		name        string
		remove      func(s *filestore.InventoryStore) (bool, error)
		wantRemoved bool
		wantCodes   []string
	}{
		{
			name:        "by_code_removes_all_matches",
			remove:      func(s *filestore.InventoryStore) (bool, error) { return s.RemoveByCode(ctx, "A") },
			wantRemoved: true,
			wantCodes:   []string{"B", "C"},
		},
		{
			name:        "by_name_removes_all_matches",
			remove:      func(s *filestore.InventoryStore) (bool, error) { return s.RemoveByName(ctx, "Lapis") },
			wantRemoved: true,
			wantCodes:   []string{"A", "A"},
		},
		{
			name:        "by_code_no_match",
			remove:      func(s *filestore.InventoryStore) (bool, error) { return s.RemoveByCode(ctx, "Z") },
			wantRemoved: false,
			wantCodes:   []string{"A", "B", "A", "C"},
		},
		{
			name:        "by_name_is_exact",
			remove:      func(s *filestore.InventoryStore) (bool, error) { return s.RemoveByName(ctx, "lapis") },
			wantRemoved: false,
			wantCodes:   []string{"A", "B", "A", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := helpers.WriteDataFile(t, seed)
			store := newStore(t, path)

			removed, err := tt.remove(store)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)

			items, err := store.Items(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCodes, codes(items))

			reloaded := newStore(t, path)
			reloadedItems, err := reloaded.Items(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCodes, codes(reloadedItems))
		})
	}
}

func TestInventoryStore_RemoveOnEmptyStorePersists(t *testing.T) {
	ctx := context.Background()
	path := helpers.DataFilePath(t)
	store := newStore(t, path)

	removed, err := store.RemoveByCode(ctx, "X")
	require.NoError(t, err)
	assert.False(t, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestInventoryStore_FailedPersistLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "inventory.json")

	store := newStore(t, path)
	_, err := store.Add(ctx, item("A", "Kept", 5, "1", 1))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	operations := map[string]func() error{
		"add": func() error {
			_, err := store.Add(ctx, item("B", "Lost", 1, "1", 0))
			return err
		},
		"adjust": func() error {
			_, err := store.AdjustQuantity(ctx, "A", 10)
			return err
		},
		"remove_by_code": func() error {
			_, err := store.RemoveByCode(ctx, "A")
			return err
		},
		"remove_by_name": func() error {
			_, err := store.RemoveByName(ctx, "Kept")
			return err
		},
		"save": func() error {
			return store.Save(ctx)
		},
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSnapshotIO)

			items, err := store.Items(ctx)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "A", items[0].Code)
			assert.Equal(t, 5, items[0].Quantity)
		})
	}
}

func TestInventoryStore_ItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, helpers.DataFilePath(t))
	_, err := store.Add(ctx, item("A", "Original", 1, "1", 0))
	require.NoError(t, err)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	items[0].Name = "Mutated"

	again, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Original", again[0].Name)
}

func TestInventoryStore_SaveRecreatesFile(t *testing.T) {
	ctx := context.Background()
	path := helpers.DataFilePath(t)
	store := newStore(t, path)
	_, err := store.Add(ctx, item("A", "One", 1, "1", 0))
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.NoError(t, store.Save(ctx))

	reloaded := newStore(t, path)
	items, err := reloaded.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestInventoryStore_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	path := helpers.DataFilePath(t)
	store := newStore(t, path)

	for i := 0; i < 5; i++ {
		_, err := store.Add(ctx, item("A", "One", i, "1", 0))
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestInventoryStore_ConcurrentAdjustments(t *testing.T) {
	ctx := context.Background()
	path := helpers.DataFilePath(t)
	store := newStore(t, path)
	_, err := store.Add(ctx, item("A", "Shared", 0, "1", 0))
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.AdjustQuantity(ctx, "A", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, items[0].Quantity)

	reloaded := newStore(t, path)
	reloadedItems, err := reloaded.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, reloadedItems[0].Quantity)
}

func codes(items []domain.InventoryItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Code)
	}
	return out
}
