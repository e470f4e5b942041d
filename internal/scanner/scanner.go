package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"media-catalog/internal/database"
	"media-catalog/internal/fingerprint"
	"media-catalog/internal/logging"
	"media-catalog/internal/metadata"
	"media-catalog/internal/metrics"
	"media-catalog/internal/thumbnail"
)

// ErrScanInProgress is returned when a scan is requested while another is
// still running. The pipeline supports a single concurrent scan.
var ErrScanInProgress = errors.New("a scan is already in progress")

// Options controls a single scan.
type Options struct {
	// IncludeSubfolders enables recursion; when false only the root's
	// immediate children are visited.
	IncludeSubfolders bool
	// ScanProjects opts project files into ingestion.
	ScanProjects bool
}

// Result holds the aggregate counters returned to the caller.
type Result struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Scanner walks directory trees and ingests discovered media into the
// catalog. All collaborators are injected; a Scanner holds no global
// state beyond its single-scan guard.
type Scanner struct {
	db     *database.Database
	thumbs *thumbnail.Generator
	meta   *metadata.Extractor
	fp     *fingerprint.Fingerprinter

	scanMu   sync.Mutex
	scanning bool

	progress atomic.Value // Progress
}

// New creates a Scanner over the given store and generators.
func New(db *database.Database, thumbs *thumbnail.Generator, meta *metadata.Extractor, fp *fingerprint.Fingerprinter) *Scanner {
	s := &Scanner{
		db:     db,
		thumbs: thumbs,
		meta:   meta,
		fp:     fp,
	}
	s.progress.Store(Progress{})
	return s
}

// Scan ingests the tree rooted at root. Files are processed strictly one
// at a time: hash, placeholder insert, thumbnail, metadata, in that order.
// Thumbnail generation spawns short-lived external processes whose
// resource usage would compound poorly under parallel fan-out, and the
// sequential walk keeps counter bookkeeping trivially consistent.
//
// Cancelling ctx unwinds the walk entirely; the partial Result accumulated
// so far is returned alongside the context error, and records persisted
// before the cancellation checkpoint remain valid. Cancellation is never
// counted as an error.
func (s *Scanner) Scan(ctx context.Context, root string, opts Options, report ProgressFunc) (Result, error) {
	if report == nil {
		report = func(ProgressEvent) {}
	}

	if !s.tryStartScan() {
		return Result{}, ErrScanInProgress
	}
	defer s.finishScan()

	metrics.ScanRunsTotal.Inc()
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	startTime := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(startTime).Seconds())
	}()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve scan root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat scan root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	logging.Info("Starting scan of %s (subfolders: %v, projects: %v)",
		absRoot, opts.IncludeSubfolders, opts.ScanProjects)

	s.progress.Store(Progress{Scanning: true, Root: absRoot, StartedAt: startTime})

	var res Result
	walkErr := s.walkDir(ctx, absRoot, true, opts, report, &res)

	s.progress.Store(Progress{
		Root:    absRoot,
		Added:   res.Added,
		Skipped: res.Skipped,
		Errors:  res.Errors,
	})

	metrics.FilesAdded.Add(float64(res.Added))
	metrics.FilesSkipped.Add(float64(res.Skipped))
	metrics.ScanErrors.Add(float64(res.Errors))

	if walkErr != nil {
		if isCancellation(walkErr) {
			logging.Info("Scan of %s cancelled after %v: %d added, %d skipped, %d errors",
				absRoot, time.Since(startTime), res.Added, res.Skipped, res.Errors)
			return res, walkErr
		}
		return res, walkErr
	}

	logging.Info("Scan of %s complete in %v: %d added, %d skipped, %d errors",
		absRoot, time.Since(startTime), res.Added, res.Skipped, res.Errors)
	return res, nil
}

// walkDir recursively enumerates one directory. Directory entries carry
// lstat-based type information, so symlinks are neither directories nor
// regular files here and symlink cycles are never followed.
//
// A read failure on the scan root aborts the scan; a read failure anywhere
// below it counts one error and traversal continues with siblings.
func (s *Scanner) walkDir(ctx context.Context, dir string, isRoot bool, opts Options, report ProgressFunc, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	report(ProgressEvent{Status: StatusScanning, File: dir})
	s.updateProgress(res, dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if isRoot {
			return fmt.Errorf("failed to read scan root %s: %w", dir, err)
		}
		logging.Warn("failed to read directory %s: %v", dir, err)
		res.Errors++
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		switch {
		case entry.IsDir():
			if opts.IncludeSubfolders {
				if err := s.walkDir(ctx, path, false, opts, report, res); err != nil {
					return err
				}
			}
		case entry.Type().IsRegular():
			if err := s.processFile(ctx, path, entry, opts, report, res); err != nil {
				return err
			}
		}
	}

	return nil
}

// tryStartScan attempts to start a scan, returns false if one is running.
func (s *Scanner) tryStartScan() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	if s.scanning {
		return false
	}
	s.scanning = true
	return true
}

func (s *Scanner) finishScan() {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.scanning = false
}

// IsScanning returns whether a scan is currently in progress.
func (s *Scanner) IsScanning() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.scanning
}

// isCancellation distinguishes the cancelled control-flow signal from real
// errors.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
