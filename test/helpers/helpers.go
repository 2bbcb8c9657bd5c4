// test/helpers/helpers.go
package helpers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/pkg/config"
)

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// DataFilePath returns a path for a data file inside a per-test directory
func DataFilePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "inventory.json")
}

// WriteDataFile writes raw content to a fresh data file and returns its path
func WriteDataFile(t *testing.T, content string) string {
	t.Helper()

	path := DataFilePath(t)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write data file")
	return path
}

// LoadTestConfig returns a test configuration
func LoadTestConfig(t *testing.T) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "stock-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Store: config.StoreConfig{
			DataFile: DataFilePath(t),
		},
		Redis: config.RedisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     "6379",
			TTL:      time.Minute,
			PoolSize: 10,
		},
		FileProcessing: config.FileProcessingConfig{
			ExcelMaxSizeMB: 10,
			PDFMaxSizeMB:   10,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 1000,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestInventoryItem creates a test inventory item
func CreateTestInventoryItem(overrides ...func(*domain.InventoryItem)) *domain.InventoryItem {
	item := &domain.InventoryItem{
		Code:         "P-001",
		Name:         "Caderno universitario",
		Quantity:     10,
		UnitPrice:    decimal.RequireFromString("12.90"),
		MinimumStock: 3,
		LastUpdated:  time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestInventoryItems creates multiple test inventory items with distinct codes
func CreateTestInventoryItems(count int) []domain.InventoryItem {
	items := make([]domain.InventoryItem, count)

	for i := 0; i < count; i++ {
		items[i] = *CreateTestInventoryItem(func(item *domain.InventoryItem) {
			item.Code = fmt.Sprintf("P-%03d", i+1)
			item.Name = fmt.Sprintf("Test Item %d", i+1)
			item.Quantity = (i * 7) % 20
			item.UnitPrice = decimal.NewFromFloat(float64(1 + i)).Div(decimal.NewFromInt(4))
			item.MinimumStock = 5
		})
	}

	return items
}

// CompareInventoryItems compares two inventory items for testing
func CompareInventoryItems(t *testing.T, expected, actual domain.InventoryItem) {
	t.Helper()

	require.Equal(t, expected.Code, actual.Code)
	require.Equal(t, expected.Name, actual.Name)
	require.Equal(t, expected.Quantity, actual.Quantity)
	require.True(t, expected.UnitPrice.Equal(actual.UnitPrice), "price %s != %s", expected.UnitPrice, actual.UnitPrice)
	require.Equal(t, expected.MinimumStock, actual.MinimumStock)
	require.True(t, expected.LastUpdated.Equal(actual.LastUpdated), "last_updated %s != %s", expected.LastUpdated, actual.LastUpdated)
}

// CompareInventoryCollections compares two collections item by item
func CompareInventoryCollections(t *testing.T, expected, actual []domain.InventoryItem) {
	t.Helper()

	require.Len(t, actual, len(expected))
	for i := range expected {
		CompareInventoryItems(t, expected[i], actual[i])
	}
}
