package database

import (
	"encoding/json"

	"media-catalog/internal/mediatypes"
)

// MediaRecord is one row of the catalog, one per ingested file.
//
// Path is the natural key: re-scanning a known path is a no-op for that
// path regardless of on-disk changes. Metadata is nil between the
// placeholder insert and the metadata backfill; its JSON shape is one of
// the metadata package's category structs.
type MediaRecord struct {
	ID          int64               `json:"id"`
	Path        string              `json:"filepath"`
	Name        string              `json:"filename"`
	Category    mediatypes.Category `json:"category"`
	Size        int64               `json:"size"`
	CreatedAt   int64               `json:"createdAt"` // epoch millis at ingestion
	Fingerprint string              `json:"fingerprint"`
	Metadata    json.RawMessage     `json:"metadata,omitempty"`
}

// ThumbnailRecord holds the encoded preview image for a MediaRecord.
// At most one exists per record, and it is always fully formed: partial
// image bytes are never persisted.
type ThumbnailRecord struct {
	ID      int64  `json:"id"`
	MediaID int64  `json:"mediaId"`
	Data    []byte `json:"-"`
	Format  string `json:"format"`
}

// LibraryStats summarizes the catalog contents.
type LibraryStats struct {
	TotalFiles     int   `json:"totalFiles"`
	TotalImages    int   `json:"totalImages"`
	TotalVideos    int   `json:"totalVideos"`
	TotalAudio     int   `json:"totalAudio"`
	TotalDocuments int   `json:"totalDocuments"`
	TotalProjects  int   `json:"totalProjects"`
	TotalBytes     int64 `json:"totalBytes"`
	Thumbnails     int   `json:"thumbnails"`
}
