package middleware

import (
	"net/http"
	"strconv"
	"time"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"

	"github.com/gorilla/mux"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger logs each request and records HTTP metrics. The route template
// (not the raw path) is used as the metrics label to keep cardinality
// bounded.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		routeLabel := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				routeLabel = tmpl
			}
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, routeLabel, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, routeLabel).Observe(duration.Seconds())

		logging.Debug("%s %s %d %v", r.Method, r.URL.Path, rec.status, duration)
	})
}
