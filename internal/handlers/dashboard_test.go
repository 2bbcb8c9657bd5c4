package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/handlers"
	"github.com/ammerola/stock-be/test/helpers"
	"github.com/ammerola/stock-be/test/mocks"
)

func TestDashboardHandler_GetDashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockInventoryService(ctrl)
	handler := handlers.NewDashboardHandler(mockService, helpers.TestLogger())

	summary := domain.Summarize(exportItems(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	mockService.EXPECT().Summary(gomock.Any()).Return(&summary, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	w := httptest.NewRecorder()
	handler.GetDashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response domain.StockSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.TotalItems)
	assert.Equal(t, 13, response.TotalQuantity)
	assert.Equal(t, 1, response.LowStockCount)
	assert.True(t, response.TotalValue.Equal(decimal.RequireFromString("136.5")))
}

func TestDashboardHandler_GetDashboardError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockInventoryService(ctrl)
	handler := handlers.NewDashboardHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().Summary(gomock.Any()).Return(nil, errors.New("malformed snapshot"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	w := httptest.NewRecorder()
	handler.GetDashboard(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load dashboard"}`, w.Body.String())
}

func TestDashboardHandler_GetTopValue(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectCall     bool
		expectedStatus int
		expectedCodes  []string
	}{
		{name: "default_limit", expectCall: true, expectedStatus: http.StatusOK, expectedCodes: []string{"B2", "A1"}},
		{name: "limit_one", query: "?limit=1", expectCall: true, expectedStatus: http.StatusOK, expectedCodes: []string{"B2"}},
		{name: "invalid_limit", query: "?limit=0", expectedStatus: http.StatusBadRequest},
		{name: "non_numeric_limit", query: "?limit=abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockInventoryService(ctrl)
			handler := handlers.NewDashboardHandler(mockService, helpers.TestLogger())
			if tt.expectCall {
				mockService.EXPECT().ListItems(gomock.Any()).Return(exportItems(), nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/top-value"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.GetTopValue(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response struct {
				Items []handlers.ValuedItem `json:"items"`
				Count int                   `json:"count"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			require.Equal(t, len(tt.expectedCodes), response.Count)
			for i, code := range tt.expectedCodes {
				assert.Equal(t, code, response.Items[i].Code)
			}
		})
	}
}
