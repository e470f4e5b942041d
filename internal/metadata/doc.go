// Package metadata extracts per-category metadata from media files during
// ingestion.
//
// Extraction is strategy-per-category and never fails the pipeline:
//   - Images: embedded EXIF (dates, GPS, camera/lens/exposure fields) with
//     date range-checking and filesystem-timestamp fallback.
//   - Audio: common tag fields plus the first embedded cover image.
//   - Video, documents, projects: filesystem timestamps only, with the
//     fallback marker set.
//
// Each category's result is a distinct struct (ImageMetadata, AudioMetadata,
// StatMetadata) rather than an open map, so consumers get compile-time field
// safety while the serialized JSON stays category-shaped.
package metadata
