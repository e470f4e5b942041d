package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"media-catalog/internal/logging"
	"media-catalog/internal/scanner"
)

// scanRequest is the body of POST /api/scan.
type scanRequest struct {
	Path              string `json:"path"`
	IncludeSubfolders bool   `json:"includeSubfolders"`
	ScanProjects      bool   `json:"scanProjects"`
}

// StartScan triggers an asynchronous scan of the requested directory.
// Returns 409 when a scan is already running; the pipeline supports one
// scan at a time.
func (h *Handlers) StartScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	info, err := os.Stat(req.Path)
	if err != nil || !info.IsDir() {
		writeError(w, http.StatusBadRequest, "path is not a readable directory")
		return
	}

	if h.scanner.IsScanning() {
		writeError(w, http.StatusConflict, "a scan is already in progress")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	h.scanMu.Lock()
	h.cancelScan = cancel
	h.lastResult = nil
	h.lastError = ""
	h.scanMu.Unlock()

	opts := scanner.Options{
		IncludeSubfolders: req.IncludeSubfolders,
		ScanProjects:      req.ScanProjects,
	}

	go func() {
		defer cancel()

		result, err := h.scanner.Scan(ctx, req.Path, opts, nil)

		h.scanMu.Lock()
		defer h.scanMu.Unlock()
		h.cancelScan = nil
		h.lastResult = &result
		if err != nil && !errors.Is(err, context.Canceled) {
			h.lastError = err.Error()
			logging.Error("scan of %s failed: %v", req.Path, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// CancelScan cancels the running scan, if any. Partial results persist.
func (h *Handlers) CancelScan(w http.ResponseWriter, r *http.Request) {
	h.scanMu.Lock()
	cancel := h.cancelScan
	h.scanMu.Unlock()

	if cancel == nil {
		writeError(w, http.StatusConflict, "no scan in progress")
		return
	}

	cancel()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// ScanProgress returns the live progress snapshot plus the last completed
// scan's result.
func (h *Handlers) ScanProgress(w http.ResponseWriter, r *http.Request) {
	h.scanMu.Lock()
	lastResult := h.lastResult
	lastError := h.lastError
	h.scanMu.Unlock()

	resp := map[string]interface{}{
		"progress": h.scanner.GetProgress(),
		"scanning": h.scanner.IsScanning(),
	}
	if lastResult != nil {
		resp["lastResult"] = lastResult
	}
	if lastError != "" {
		resp["lastError"] = lastError
	}

	writeJSON(w, http.StatusOK, resp)
}
