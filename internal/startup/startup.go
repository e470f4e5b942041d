package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"media-catalog/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration.
type Config struct {
	DatabaseDir    string
	Port           string
	MetricsPort    string
	MetricsEnabled bool
	FFmpegPath     string

	// Derived paths
	DatabasePath string

	// Whether the ffmpeg binary was found; video/waveform thumbnails
	// degrade without it.
	FFmpegAvailable bool
}

// LoadConfig loads and validates configuration from environment variables.
func LoadConfig() (*Config, error) {
	logging.Info("media-catalog %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, BuildTime, GoVersion, runtime.GOOS, runtime.GOARCH)

	databaseDir := getEnv("DATABASE_DIR", "./data")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  DATABASE_DIR:    %s", databaseDir)
	logging.Info("  PORT:            %s", port)
	logging.Info("  METRICS_PORT:    %s", metricsPort)
	logging.Info("  METRICS_ENABLED: %v", metricsEnabled)
	logging.Info("  FFMPEG_PATH:     %s", ffmpegPath)
	logging.Info("  LOG_LEVEL:       %s", logging.GetLevel())

	if err := os.MkdirAll(databaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", databaseDir, err)
	}

	ffmpegAvailable := true
	if resolved, err := exec.LookPath(ffmpegPath); err != nil {
		ffmpegAvailable = false
		logging.Warn("ffmpeg not found at %q; video and waveform thumbnails will degrade", ffmpegPath)
	} else {
		logging.Info("  ffmpeg:          %s", resolved)
	}

	return &Config{
		DatabaseDir:     databaseDir,
		Port:            port,
		MetricsPort:     metricsPort,
		MetricsEnabled:  metricsEnabled,
		FFmpegPath:      ffmpegPath,
		DatabasePath:    filepath.Join(databaseDir, "catalog.db"),
		FFmpegAvailable: ffmpegAvailable,
	}, nil
}

// LogFatal logs a fatal error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
