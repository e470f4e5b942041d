// Package scanner implements the media ingestion pipeline: a recursive
// directory walker driving a per-file state machine that classifies,
// fingerprints, persists, thumbnails, and extracts metadata for each
// discovered file.
//
// Scans are explicit, one-shot, and sequential: one file is fully
// processed before the next begins, and only one scan runs at a time.
// Cancellation is cooperative through the scan's context, checked before
// each directory and each file, and honored by the external-process
// thumbnail steps; it unwinds the whole walk while leaving already
// persisted records intact.
//
// The per-file state machine and its failure isolation rules:
//
//	check existing -> stat -> classify (+ filter) -> junk filter (images)
//	-> fingerprint -> placeholder insert -> thumbnail -> metadata -> persist
//
// Failures before the placeholder insert count as errors for that file
// only; failures after it are logged and the file still counts as added.
// Known paths, filtered categories, and junk images are skips, not errors.
package scanner
