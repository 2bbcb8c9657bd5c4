// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stock-be/internal/adapters/filestore"
	"github.com/ammerola/stock-be/internal/core/domain"
)

var productNames = []string{
	"Caneta esferografica azul",
	"Caderno universitario 200 folhas",
	"Grampeador de mesa",
	"Papel sulfite A4 500 folhas",
	"Fita adesiva transparente",
	"Clips niquelado 2/0",
	"Marca texto amarelo",
	"Borracha branca",
	"Pasta suspensa",
	"Envelope pardo",
}

func benchLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSeededStore opens a store in a temp dir holding n items
func newSeededStore(b *testing.B, n int) *filestore.InventoryStore {
	b.Helper()

	store, err := filestore.NewInventoryStore(filepath.Join(b.TempDir(), "inventory.json"), benchLogger())
	if err != nil {
		b.Fatalf("failed to open store: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < n; i++ {
		if _, err := store.Add(ctx, benchItem(i)); err != nil {
			b.Fatalf("failed to seed store: %v", err)
		}
	}
	return store
}

func benchItem(i int) domain.InventoryItem {
	return domain.InventoryItem{
		Code:         fmt.Sprintf("B-%05d", i),
		Name:         productNames[i%len(productNames)],
		Quantity:     i % 50,
		UnitPrice:    decimal.New(int64(100+i%900), -2),
		MinimumStock: 10,
	}
}

// createStockLines builds PDF-style text lines for the importer
func createStockLines(numItems int) []string {
	lines := []string{"LISTA DE ESTOQUE", "codigo;nome;quantidade;preco;minimo"}
	for i := 0; i < numItems; i++ {
		lines = append(lines, fmt.Sprintf("B-%05d;%s;%d;%d,%02d;%d",
			i, productNames[i%len(productNames)], i%50, 1+i%90, i%100, 10))
	}
	return lines
}
