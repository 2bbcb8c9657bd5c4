// internal/handlers/routes.go
package handlers

import "net/http"

const apiV1 = "/api/v1"

// Routes groups the handlers served by the API
type Routes struct {
	Inventory *InventoryHandler
	Dashboard *DashboardHandler
	Export    *ExportHandler
	Import    *ImportHandler
	Health    *HealthHandler
	Backup    *BackupHandler
}

// RegisterRoutes registers every endpoint using Go 1.22 method-specific routing.
// Nil handlers are skipped.
func RegisterRoutes(mux *http.ServeMux, routes Routes) {
	if h := routes.Health; h != nil {
		mux.HandleFunc("GET /health", h.Health)
		mux.HandleFunc("GET /ready", h.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", h.Health)
	}

	if h := routes.Inventory; h != nil {
		mux.HandleFunc("GET "+apiV1+"/inventory", h.ListInventory)
		mux.HandleFunc("POST "+apiV1+"/inventory", h.CreateInventory)
		mux.HandleFunc("GET "+apiV1+"/inventory/low-stock", h.LowStock)
		mux.HandleFunc("GET "+apiV1+"/inventory/value", h.TotalValue)
		mux.HandleFunc("POST "+apiV1+"/inventory/{code}/movements", h.RecordMovement)
		mux.HandleFunc("DELETE "+apiV1+"/inventory/code/{code}", h.RemoveByCode)
		mux.HandleFunc("DELETE "+apiV1+"/inventory/name/{name...}", h.RemoveByName)
	}

	if h := routes.Import; h != nil {
		mux.HandleFunc("POST "+apiV1+"/import/excel", h.ImportExcel)
		mux.HandleFunc("POST "+apiV1+"/import/pdf", h.ImportPDF)
	}

	if h := routes.Export; h != nil {
		mux.HandleFunc("GET "+apiV1+"/export/excel", h.ExportExcel)
		mux.HandleFunc("GET "+apiV1+"/export/json", h.ExportJSON)
	}

	if h := routes.Dashboard; h != nil {
		mux.HandleFunc("GET "+apiV1+"/dashboard", h.GetDashboard)
		mux.HandleFunc("GET "+apiV1+"/dashboard/top-value", h.GetTopValue)
	}

	if h := routes.Backup; h != nil {
		mux.HandleFunc("POST "+apiV1+"/backups", h.RequestBackup)
	}
}
