// Package handlers implements the HTTP API over the media catalog:
// triggering and observing scans, listing records, duplicate clusters,
// statistics, and record deletion.
package handlers
