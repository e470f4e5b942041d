// Package database provides SQLite storage for the media catalog.
//
// It holds two record kinds: media records (one row per ingested file,
// path-unique) and thumbnail blobs (at most one per record, deleted with
// their owner). The database uses WAL mode so catalog reads stay
// responsive while a scan is writing.
//
// Fingerprint values are intentionally non-unique; the Duplicates query
// groups repeated fingerprints for duplicate detection.
package database
