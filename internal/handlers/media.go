package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"media-catalog/internal/database"
	"media-catalog/internal/logging"

	"github.com/gorilla/mux"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// ListMedia returns catalog records, optionally filtered by category.
// Query params: category, limit, offset.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := intParam(q.Get("limit"), defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := intParam(q.Get("offset"), 0)

	records, err := h.db.ListMedia(r.Context(), q.Get("category"), limit, offset)
	if err != nil {
		logging.Error("failed to list media: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list media")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":  records,
		"limit":  limit,
		"offset": offset,
	})
}

// GetMedia returns a single record by id.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rec, err := h.db.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		logging.Error("failed to get media %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get media")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// DeleteMedia removes a record and its thumbnail atomically.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.db.DeleteMedia(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		logging.Error("failed to delete media %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetMediaThumbnail serves the stored thumbnail bytes for a record.
func (h *Handlers) GetMediaThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	thumb, err := h.db.GetThumbnail(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no thumbnail")
			return
		}
		logging.Error("failed to get thumbnail for %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get thumbnail")
		return
	}

	w.Header().Set("Content-Type", "image/"+thumb.Format)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := w.Write(thumb.Data); err != nil {
		logging.Error("failed to write thumbnail response: %v", err)
	}
}

// GetDuplicates returns duplicate clusters grouped by fingerprint.
func (h *Handlers) GetDuplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := h.scanner.Duplicates(r.Context())
	if err != nil {
		logging.Error("failed to query duplicates: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to query duplicates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
		"count":  len(groups),
	})
}

// GetStats returns catalog-wide statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.CalculateStats(r.Context())
	if err != nil {
		logging.Error("failed to calculate stats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to calculate stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func intParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
