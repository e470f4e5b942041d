// Package middleware provides HTTP middleware for the media catalog API:
// request logging and Prometheus request metrics.
package middleware
