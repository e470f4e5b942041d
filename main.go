package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-catalog/internal/database"
	"media-catalog/internal/fingerprint"
	"media-catalog/internal/handlers"
	"media-catalog/internal/logging"
	"media-catalog/internal/metadata"
	"media-catalog/internal/middleware"
	"media-catalog/internal/scanner"
	"media-catalog/internal/startup"
	"media-catalog/internal/thumbnail"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error("failed to close database: %v", err)
		}
	}()

	if err := thumbnail.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using pure-Go image decoding: %v", err)
	}
	defer thumbnail.ShutdownVips()

	sc := scanner.New(db,
		thumbnail.NewGenerator(config.FFmpegPath),
		metadata.NewExtractor(),
		fingerprint.New(),
	)

	h := handlers.New(db, sc, config)
	router := setupRouter(h)

	handler := middleware.Logger(router)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if config.MetricsEnabled {
		go serveMetrics(config.MetricsPort, db)
	}

	go handleShutdown(srv)

	logging.Info("Server listening on :%s (startup took %v)", config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/readyz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scan", h.StartScan).Methods("POST")
	api.HandleFunc("/scan/cancel", h.CancelScan).Methods("POST")
	api.HandleFunc("/scan/progress", h.ScanProgress).Methods("GET")
	api.HandleFunc("/media", h.ListMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")
	api.HandleFunc("/media/{id}/thumbnail", h.GetMediaThumbnail).Methods("GET")
	api.HandleFunc("/duplicates", h.GetDuplicates).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")

	return r
}

func serveMetrics(port string, db *database.Database) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			db.UpdateDBMetrics()
		}
	}()

	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())

	logging.Info("Metrics listening on :%s", port)
	if err := http.ListenAndServe(":"+port, m); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("Received signal %v, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error: %v", err)
	}
}
