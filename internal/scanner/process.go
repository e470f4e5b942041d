package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"media-catalog/internal/database"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"
	"media-catalog/internal/thumbnail"
)

// processFile runs one file through the ingestion state machine:
// existence check, stat, classify (+ type filter), junk filter for images,
// fingerprint, placeholder insert, thumbnail, metadata, metadata persist.
//
// A record that already exists for the exact path is skipped without ever
// re-verifying content; a file edited in place after first ingestion is
// deliberately never re-processed (library entries are immutable once
// seen). The placeholder insert is the durability boundary: everything
// after it is best-effort enrichment whose failures are logged, not
// counted.
//
// The returned error is non-nil only for cancellation, which unwinds the
// walk; every other failure is isolated to this file.
func (s *Scanner) processFile(ctx context.Context, path string, entry fs.DirEntry, opts Options, report ProgressFunc, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cat := mediatypes.Classify(strings.ToLower(filepath.Ext(entry.Name())))
	if !mediatypes.Allowed(cat, opts.ScanProjects) {
		// Not media; no counter changes.
		return nil
	}

	exists, err := s.db.HasPath(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logging.Error("failed to check existing record for %s: %v", path, err)
		res.Errors++
		return nil
	}
	if exists {
		res.Skipped++
		s.updateProgress(res, path)
		return nil
	}

	info, err := entry.Info()
	if err != nil {
		logging.Warn("failed to stat %s: %v", path, err)
		res.Errors++
		return nil
	}

	report(ProgressEvent{Status: StatusProcessing, File: path})
	s.updateProgress(res, path)

	if cat == mediatypes.CategoryImage && thumbnail.IsJunkImage(path) {
		logging.Debug("skipping junk image %s (below %dpx)", path, thumbnail.MinPixelDimension)
		res.Skipped++
		return nil
	}

	fp, err := s.fp.Compute(path, info)
	if err != nil {
		logging.Error("failed to fingerprint %s: %v", path, err)
		res.Errors++
		return nil
	}

	rec := &database.MediaRecord{
		Path:        path,
		Name:        entry.Name(),
		Category:    cat,
		Size:        info.Size(),
		CreatedAt:   info.ModTime().UnixMilli(),
		Fingerprint: fp,
	}

	// Placeholder insert: the record becomes durable and queryable before
	// any enrichment runs. A crash mid-thumbnail leaves a valid,
	// metadata-less row rather than an orphaned thumbnail.
	if err := s.db.InsertMedia(ctx, rec); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logging.Error("failed to insert record for %s: %v", path, err)
		res.Errors++
		return nil
	}

	res.Added++
	s.updateProgress(res, path)

	return s.enrich(ctx, rec, info, report)
}

// enrich generates the thumbnail and metadata for a freshly inserted
// record. Failures here are logged only; the file still counts as added.
// Only cancellation propagates out.
func (s *Scanner) enrich(ctx context.Context, rec *database.MediaRecord, info fs.FileInfo, report ProgressFunc) error {
	report(ProgressEvent{Status: StatusThumbnail, File: rec.Path})

	var thumb []byte
	var meta interface{}

	switch rec.Category {
	case mediatypes.CategoryImage:
		data, err := s.thumbs.Image(rec.Path)
		if err != nil {
			logging.Warn("thumbnail failed for %s: %v", rec.Path, err)
			metrics.ThumbnailFailures.WithLabelValues(string(rec.Category)).Inc()
		} else {
			thumb = data
		}
		meta = s.meta.ExtractImage(rec.Path, info)

	case mediatypes.CategoryVideo:
		data, err := s.thumbs.VideoFrame(ctx, rec.Path, info.Size())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("thumbnail failed for %s: %v", rec.Path, err)
			metrics.ThumbnailFailures.WithLabelValues(string(rec.Category)).Inc()
		} else {
			thumb = data
		}
		meta = s.meta.ExtractStat(info)

	case mediatypes.CategoryAudio:
		// Tags are read before thumbnailing so embedded cover art can
		// short-circuit the waveform step.
		audioMeta, cover := s.meta.ExtractAudio(rec.Path)
		data, err := s.thumbs.Audio(ctx, rec.Path, cover)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("thumbnail failed for %s: %v", rec.Path, err)
			metrics.ThumbnailFailures.WithLabelValues(string(rec.Category)).Inc()
		} else {
			thumb = data
		}
		meta = audioMeta

	default:
		// Documents and projects get no thumbnail; their structure is
		// parsed by other modules.
		meta = s.meta.ExtractStat(info)
	}

	if thumb != nil {
		if err := s.db.SaveThumbnail(ctx, rec.ID, thumb, thumbnail.Format); err != nil {
			logging.Warn("failed to persist thumbnail for %s: %v", rec.Path, err)
		} else {
			metrics.ThumbnailsGenerated.WithLabelValues(string(rec.Category)).Inc()
		}
	}

	if err := s.db.UpdateMetadata(ctx, rec.ID, meta); err != nil {
		logging.Warn("failed to persist metadata for %s: %v", rec.Path, err)
	}

	return nil
}
