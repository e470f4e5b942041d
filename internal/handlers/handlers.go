package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"media-catalog/internal/database"
	"media-catalog/internal/logging"
	"media-catalog/internal/scanner"
	"media-catalog/internal/startup"
)

// Handlers bundles the HTTP handlers over the catalog and pipeline.
type Handlers struct {
	db      *database.Database
	scanner *scanner.Scanner
	config  *startup.Config

	scanMu     sync.Mutex
	cancelScan context.CancelFunc
	lastResult *scanner.Result
	lastError  string
}

// New creates the handler set.
func New(db *database.Database, sc *scanner.Scanner, config *startup.Config) *Handlers {
	return &Handlers{
		db:      db,
		scanner: sc,
		config:  config,
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"scanning": h.scanner.IsScanning(),
	})
}

// GetVersion returns build information.
func (h *Handlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, startup.GetBuildInfo())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
