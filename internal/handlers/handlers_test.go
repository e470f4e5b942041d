package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"media-catalog/internal/database"
	"media-catalog/internal/fingerprint"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metadata"
	"media-catalog/internal/scanner"
	"media-catalog/internal/startup"
	"media-catalog/internal/thumbnail"

	"github.com/gorilla/mux"
)

func newTestHandlers(t *testing.T) (*Handlers, *database.Database) {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	sc := scanner.New(db, thumbnail.NewGenerator(""), metadata.NewExtractor(), fingerprint.New())
	return New(db, sc, &startup.Config{}), db
}

func testRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scan", h.StartScan).Methods("POST")
	api.HandleFunc("/scan/cancel", h.CancelScan).Methods("POST")
	api.HandleFunc("/scan/progress", h.ScanProgress).Methods("GET")
	api.HandleFunc("/media", h.ListMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")
	api.HandleFunc("/media/{id}/thumbnail", h.GetMediaThumbnail).Methods("GET")
	api.HandleFunc("/duplicates", h.GetDuplicates).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	return r
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := doRequest(t, testRouter(h), "GET", "/health", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", resp["status"])
	}
	if resp["scanning"] != false {
		t.Errorf("Expected scanning false, got %v", resp["scanning"])
	}
}

func TestStartScanValidation(t *testing.T) {
	h, _ := newTestHandlers(t)
	router := testRouter(h)

	rec := doRequest(t, router, "POST", "/api/scan", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}

	rec = doRequest(t, router, "POST", "/api/scan", []byte(`{}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing path, got %d", rec.Code)
	}

	rec = doRequest(t, router, "POST", "/api/scan", []byte(`{"path":"/does/not/exist"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for nonexistent path, got %d", rec.Code)
	}
}

func TestCancelScanWithoutScan(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := doRequest(t, testRouter(h), "POST", "/api/scan/cancel", nil)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 with no scan running, got %d", rec.Code)
	}
}

func TestScanProgressEmpty(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := doRequest(t, testRouter(h), "GET", "/api/scan/progress", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["scanning"] != false {
		t.Errorf("Expected scanning false, got %v", resp["scanning"])
	}
	if _, ok := resp["lastResult"]; ok {
		t.Error("Expected no lastResult before any scan")
	}
}

func TestListMediaEmpty(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := doRequest(t, testRouter(h), "GET", "/api/media", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Items []database.MediaRecord `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(resp.Items))
	}
}

func TestGetMedia(t *testing.T) {
	h, db := newTestHandlers(t)
	router := testRouter(h)

	mediaRec := &database.MediaRecord{
		Path:        "/library/photo.jpg",
		Name:        "photo.jpg",
		Category:    mediatypes.CategoryImage,
		Size:        100,
		CreatedAt:   1700000000000,
		Fingerprint: "abc",
	}
	if err := db.InsertMedia(context.Background(), mediaRec); err != nil {
		t.Fatalf("InsertMedia failed: %v", err)
	}

	rec := doRequest(t, router, "GET", "/api/media/1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var got database.MediaRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.Path != mediaRec.Path {
		t.Errorf("Expected path %q, got %q", mediaRec.Path, got.Path)
	}

	rec = doRequest(t, router, "GET", "/api/media/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing record, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/media/banana", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed id, got %d", rec.Code)
	}
}

func TestGetMediaThumbnail(t *testing.T) {
	h, db := newTestHandlers(t)
	router := testRouter(h)

	mediaRec := &database.MediaRecord{
		Path:        "/library/photo.jpg",
		Name:        "photo.jpg",
		Category:    mediatypes.CategoryImage,
		CreatedAt:   1700000000000,
		Fingerprint: "abc",
	}
	if err := db.InsertMedia(context.Background(), mediaRec); err != nil {
		t.Fatalf("InsertMedia failed: %v", err)
	}

	rec := doRequest(t, router, "GET", "/api/media/1/thumbnail", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before a thumbnail exists, got %d", rec.Code)
	}

	if err := db.SaveThumbnail(context.Background(), mediaRec.ID, []byte{0xff, 0xd8, 0x01}, "jpeg"); err != nil {
		t.Fatalf("SaveThumbnail failed: %v", err)
	}

	rec = doRequest(t, router, "GET", "/api/media/1/thumbnail", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %q", ct)
	}
	if rec.Body.Len() != 3 {
		t.Errorf("Expected 3 thumbnail bytes, got %d", rec.Body.Len())
	}
}

func TestDeleteMediaEndpoint(t *testing.T) {
	h, db := newTestHandlers(t)
	router := testRouter(h)

	mediaRec := &database.MediaRecord{
		Path:        "/library/photo.jpg",
		Name:        "photo.jpg",
		Category:    mediatypes.CategoryImage,
		CreatedAt:   1700000000000,
		Fingerprint: "abc",
	}
	if err := db.InsertMedia(context.Background(), mediaRec); err != nil {
		t.Fatalf("InsertMedia failed: %v", err)
	}

	rec := doRequest(t, router, "DELETE", "/api/media/1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, "DELETE", "/api/media/1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on double delete, got %d", rec.Code)
	}
}

func TestGetDuplicatesEmpty(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := doRequest(t, testRouter(h), "GET", "/api/duplicates", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Count  int                      `json:"count"`
		Groups []scanner.DuplicateGroup `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Count != 0 || len(resp.Groups) != 0 {
		t.Errorf("Expected no duplicate groups, got %+v", resp)
	}
}

func TestGetStats(t *testing.T) {
	h, db := newTestHandlers(t)

	if err := db.InsertMedia(context.Background(), &database.MediaRecord{
		Path:        "/library/photo.jpg",
		Name:        "photo.jpg",
		Category:    mediatypes.CategoryImage,
		Size:        2048,
		CreatedAt:   1700000000000,
		Fingerprint: "abc",
	}); err != nil {
		t.Fatalf("InsertMedia failed: %v", err)
	}

	rec := doRequest(t, testRouter(h), "GET", "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var stats database.LibraryStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if stats.TotalFiles != 1 || stats.TotalImages != 1 || stats.TotalBytes != 2048 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}
