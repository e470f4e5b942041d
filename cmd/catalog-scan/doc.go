// Command catalog-scan runs the ingestion pipeline against a directory
// without starting the HTTP server.
//
// It supports the following operations:
//   - scan: Ingest a directory tree into the catalog
//   - duplicates: List clusters of files sharing a content fingerprint
//   - stats: Show catalog-wide statistics
//
// Usage:
//
//	catalog-scan <command>
//
// Commands:
//
//	scan <dir> [--flat] [--projects]
//	        Walk the directory and ingest discovered media. --flat
//	        disables recursion into subdirectories; --projects opts
//	        DAW/editor project files into ingestion. Interrupting the
//	        scan keeps everything ingested up to that point.
//
//	duplicates
//	        Print each duplicate cluster with its fingerprint and the
//	        paths sharing it.
//
//	stats
//	        Print catalog statistics as JSON.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: ./data)
//	FFMPEG_PATH  - ffmpeg binary used for video and waveform thumbnails
//
// Notes:
//
// The catalog supports one scan at a time; running catalog-scan against
// a database currently being scanned by the server fails the
// single-scan guard.
package main
