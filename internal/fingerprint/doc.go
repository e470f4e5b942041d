// Package fingerprint computes content fingerprints used for duplicate
// detection in the media catalog.
//
// Small files are hashed in full; large files get a cheaper surrogate hash
// built from their size, modification time, and a leading byte window. See
// Fingerprinter.Compute for the exact trade-off this makes.
package fingerprint
