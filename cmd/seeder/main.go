// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/ammerola/stock-be/internal/adapters/filestore"
	"github.com/ammerola/stock-be/internal/core/ports"
	"github.com/ammerola/stock-be/internal/core/services"
	"github.com/ammerola/stock-be/internal/importer"
	"github.com/ammerola/stock-be/internal/pkg/logger"
)

// seederState tracks which stock lists were already loaded
type seederState struct {
	ProcessedFiles []string  `json:"processed_files"`
	ProcessedCount int       `json:"processed_count"`
	LastUpdate     time.Time `json:"last_update"`
}

func loadState(path string) seederState {
	var state seederState
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &state); err != nil {
			slog.Warn("ignoring unreadable state file",
				slog.String("file", path),
				slog.String("error", err.Error()))
			return seederState{}
		}
	}
	return state
}

func saveState(path string, state seederState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// parseFile picks the parser from the file extension
func parseFile(path string) (*importer.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return importer.ParseExcel(data)
	case ".pdf":
		return importer.ParsePDF(data)
	default:
		return nil, fmt.Errorf("unsupported file type %s", filepath.Ext(path))
	}
}

func stockLists(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.xlsx", "*.pdf"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	var (
		dataFile  = flag.String("data", envOr("STORE_DATA_FILE", "inventory.json"), "Inventory data file to seed")
		listsDir  = flag.String("dir", "./stock-lists", "Directory containing .xlsx and .pdf stock lists")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Parse files without modifying the data file")
		force     = flag.Bool("force", false, "Reload every stock list")
	)
	flag.Parse()

	log := logger.SetupLogger(*logLevel, "json")
	ctx := context.Background()

	var service ports.InventoryService
	if !*dryRun {
		store, err := filestore.NewInventoryStore(*dataFile, log)
		if err != nil {
			log.Error("failed to open inventory store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		service = services.NewInventoryService(store, log)
	}

	state := seederState{}
	if !*force {
		state = loadState(*stateFile)
	}

	files, err := stockLists(*listsDir)
	if err != nil {
		log.Error("failed to find stock lists", slog.String("error", err.Error()))
		os.Exit(1)
	}

	totalProcessed := 0
	totalItems := 0
	totalRejected := 0
	var failedFiles []string

	for i, file := range files {
		name := filepath.Base(file)
		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(files), name)

		if slices.Contains(state.ProcessedFiles, name) {
			log.Info("skipping already processed file", slog.String("file", name))
			continue
		}

		result, err := parseFile(file)
		if err != nil {
			log.Error("failed to parse stock list",
				slog.String("file", name),
				slog.String("error", err.Error()))
			failedFiles = append(failedFiles, name)
			continue
		}

		for _, rowErr := range result.Errors {
			log.Warn("row rejected",
				slog.String("file", name),
				slog.Int("row", rowErr.Row),
				slog.String("reason", rowErr.Reason))
		}
		totalRejected += len(result.Errors)

		if len(result.Inputs) == 0 {
			fmt.Printf("WARNING: No items found in %s\n", name)
			failedFiles = append(failedFiles, fmt.Sprintf("%s (0 items)", name))
			continue
		}

		if !*dryRun {
			if _, err := service.AddItems(ctx, result.Inputs); err != nil {
				log.Error("failed to add items",
					slog.String("file", name),
					slog.String("error", err.Error()))
				failedFiles = append(failedFiles, name)
				continue
			}
		}

		fmt.Printf("SUCCESS: Processed %s - %d items\n", name, len(result.Inputs))
		totalProcessed++
		totalItems += len(result.Inputs)

		state.ProcessedFiles = append(state.ProcessedFiles, name)
		state.ProcessedCount = len(state.ProcessedFiles)
		state.LastUpdate = time.Now()
	}

	if !*dryRun {
		if err := saveState(*stateFile, state); err != nil {
			log.Error("failed to save state", slog.String("error", err.Error()))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Files processed: %d\n", totalProcessed)
	fmt.Printf("Items added:     %d\n", totalItems)
	fmt.Printf("Rows rejected:   %d\n", totalRejected)

	if len(failedFiles) > 0 {
		fmt.Printf("\nFailed/empty files (%d):\n", len(failedFiles))
		for _, f := range failedFiles {
			fmt.Printf("  - %s\n", f)
		}
	}

	log.Info("seed operation completed",
		slog.Int("files_processed", totalProcessed),
		slog.Int("items_added", totalItems),
		slog.Int("rows_rejected", totalRejected),
		slog.Int("failed_files", len(failedFiles)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] The data file was not modified")
	}
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
