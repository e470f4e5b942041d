// Package metrics defines the Prometheus collectors exported by the media
// catalog: scan progress and outcomes, thumbnail generation results,
// database query timings, and HTTP request accounting. All collectors are
// registered at init via promauto and served on the metrics listener.
package metrics
