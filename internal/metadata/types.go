package metadata

// All timestamps in this package are integer epoch milliseconds, matching
// the catalog's created_at column.

// ImageMetadata holds fields extracted from an image's embedded EXIF data.
// When no valid embedded date survives range-checking, the date fields are
// substituted from filesystem timestamps and Fallback is set.
type ImageMetadata struct {
	DateTaken    int64 `json:"dateTaken,omitempty"`
	DateModified int64 `json:"dateModified,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	CameraMake   string  `json:"cameraMake,omitempty"`
	CameraModel  string  `json:"cameraModel,omitempty"`
	LensModel    string  `json:"lensModel,omitempty"`
	ExposureTime string  `json:"exposureTime,omitempty"`
	FNumber      float64 `json:"fNumber,omitempty"`
	ISO          int     `json:"iso,omitempty"`
	FocalLength  float64 `json:"focalLength,omitempty"`

	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// AudioMetadata holds common tag fields from an audio file. Cover art is
// returned separately by the extractor and is never serialized here.
type AudioMetadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   int    `json:"year,omitempty"`

	HasCoverArt bool `json:"hasCoverArt,omitempty"`
}

// StatMetadata is the minimal metadata shape used where no container
// parsing happens: video files (deliberately skipped for performance) and
// document/project files (parsed by other modules). It mirrors the image
// fallback shape.
type StatMetadata struct {
	DateCreated  int64 `json:"dateCreated,omitempty"`
	DateModified int64 `json:"dateModified,omitempty"`

	Fallback bool `json:"fallback"`
}
