package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-be/internal/handlers"
	"github.com/ammerola/stock-be/test/helpers"
)

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(t *testing.T, dataFile string) string
		withRedis      bool
		expectedStatus int
		expectedState  string
	}{
		{
			name: "existing_data_file",
			setup: func(t *testing.T, dataFile string) string {
				require.NoError(t, os.WriteFile(dataFile, []byte("[]"), 0o644))
				return dataFile
			},
			withRedis:      true,
			expectedStatus: http.StatusOK,
			expectedState:  "healthy",
		},
		{
			name:           "data_file_not_created_yet",
			setup:          func(t *testing.T, dataFile string) string { return dataFile },
			expectedStatus: http.StatusOK,
			expectedState:  "healthy",
		},
		{
			name: "missing_directory",
			setup: func(t *testing.T, dataFile string) string {
				return filepath.Join(filepath.Dir(dataFile), "missing", "inventory.json")
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "degraded",
		},
		{
			name: "path_is_directory",
			setup: func(t *testing.T, dataFile string) string {
				return filepath.Dir(dataFile)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := helpers.LoadTestConfig(t)
			cfg.Store.DataFile = tt.setup(t, helpers.DataFilePath(t))

			var client *redis.Client
			if tt.withRedis {
				client = helpers.SetupTestRedis(t).Client
			}

			handler := handlers.NewHealthHandler(client, nil, cfg, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			handler.Health(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var status handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
			assert.Contains(t, status.Services, "store")
			if tt.withRedis {
				assert.Equal(t, "healthy", status.Services["redis"].Status)
			} else {
				assert.NotContains(t, status.Services, "redis")
			}
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	cfg := helpers.LoadTestConfig(t)
	cfg.Store.DataFile = helpers.DataFilePath(t)
	testRedis := helpers.SetupTestRedis(t)

	handler := handlers.NewHealthHandler(testRedis.Client, nil, cfg, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	handler.Readiness(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	testRedis.Server.Close()

	w = httptest.NewRecorder()
	handler.Readiness(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response struct {
		Ready   bool              `json:"ready"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Ready)
	assert.Equal(t, "ready", response.Details["store"])
	assert.Equal(t, "not ready", response.Details["redis"])
}
