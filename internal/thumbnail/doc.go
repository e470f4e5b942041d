// Package thumbnail generates fixed-size preview images for the media
// catalog, one fallback chain per media category.
//
//   - Images: libvips decode-time shrinking when available, then imaging
//     with auto-orientation, then the stdlib decoder; resize-to-cover into
//     300x300 and encode as JPEG.
//   - Video: one frame extracted by ffmpeg to a temp file with an adaptive
//     seek offset (later for large files) under a 30s timeout.
//   - Audio: embedded cover art, else an ffmpeg waveform over the leading
//     minute of the track, else a generated placeholder that cannot fail.
//
// A failed step degrades to the next; generation failures never abort
// ingestion. Temp files are cleaned up on every branch, including
// cancellation.
package thumbnail
