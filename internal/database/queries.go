package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// InsertMedia creates a MediaRecord and fills in its assigned ID.
// This is the placeholder insert: metadata is expected to be nil and is
// backfilled by UpdateMetadata once enrichment completes. A duplicate path
// fails the unique constraint; callers check HasPath first.
func (d *Database) InsertMedia(ctx context.Context, rec *MediaRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_media", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var metadata interface{}
	if rec.Metadata != nil {
		metadata = string(rec.Metadata)
	}

	var result sql.Result
	result, err = d.db.ExecContext(ctx, `
		INSERT INTO media (path, name, category, size, created_at, fingerprint, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Path, rec.Name, rec.Category, rec.Size, rec.CreatedAt, rec.Fingerprint, metadata)
	if err != nil {
		return fmt.Errorf("failed to insert media record for %s: %w", rec.Path, err)
	}

	rec.ID, err = result.LastInsertId()
	return err
}

// UpdateMetadata backfills the metadata column for an existing record.
func (d *Database) UpdateMetadata(ctx context.Context, id int64, meta interface{}) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_metadata", start, err) }()

	var blob []byte
	blob, err = json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "UPDATE media SET metadata = ? WHERE id = ?", string(blob), id)
	return err
}

// HasPath reports whether a record already exists for the exact path.
func (d *Database) HasPath(ctx context.Context, path string) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("has_path", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var one int
	err = d.db.QueryRowContext(ctx, "SELECT 1 FROM media WHERE path = ?", path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return false, nil
	}
	return err == nil, err
}

// GetByPath retrieves a single record by its path.
func (d *Database) GetByPath(ctx context.Context, path string) (*MediaRecord, error) {
	return d.getOne(ctx, "get_by_path", "path = ?", path)
}

// GetByID retrieves a single record by its ID.
func (d *Database) GetByID(ctx context.Context, id int64) (*MediaRecord, error) {
	return d.getOne(ctx, "get_by_id", "id = ?", id)
}

func (d *Database) getOne(ctx context.Context, op, where string, arg interface{}) (*MediaRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(op, start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		"SELECT id, path, name, category, size, created_at, fingerprint, metadata FROM media WHERE "+where, arg)

	rec, scanErr := scanMediaRecord(row)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		err = scanErr
		return nil, err
	}
	return rec, nil
}

// ListMedia returns catalog records, optionally filtered by category,
// newest first.
func (d *Database) ListMedia(ctx context.Context, category string, limit, offset int) ([]MediaRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_media", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT id, path, name, category, size, created_at, fingerprint, metadata FROM media"
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMediaRecords(rows)
}

// Duplicates returns every record whose fingerprint occurs on more than
// one record, ordered by fingerprint so callers can group contiguous runs
// into duplicate clusters. Returns an empty slice when nothing repeats.
func (d *Database) Duplicates(ctx context.Context) ([]MediaRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("duplicates", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx, `
		SELECT id, path, name, category, size, created_at, fingerprint, metadata
		FROM media
		WHERE fingerprint IN (
			SELECT fingerprint FROM media GROUP BY fingerprint HAVING COUNT(*) > 1
		)
		ORDER BY fingerprint, path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMediaRecords(rows)
}

// SaveThumbnail stores the encoded thumbnail for a record. Only fully
// formed image bytes reach this point; partial thumbnails are never
// persisted.
func (d *Database) SaveThumbnail(ctx context.Context, mediaID int64, data []byte, format string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("save_thumbnail", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO thumbnails (media_id, data, format) VALUES (?, ?, ?)
		ON CONFLICT(media_id) DO UPDATE SET data = excluded.data, format = excluded.format
	`, mediaID, data, format)
	return err
}

// GetThumbnail retrieves the thumbnail for a record, or ErrNotFound.
func (d *Database) GetThumbnail(ctx context.Context, mediaID int64) (*ThumbnailRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_thumbnail", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec ThumbnailRecord
	err = d.db.QueryRowContext(ctx,
		"SELECT id, media_id, data, format FROM thumbnails WHERE media_id = ?", mediaID,
	).Scan(&rec.ID, &rec.MediaID, &rec.Data, &rec.Format)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteMedia removes a record and its thumbnail in one transaction.
func (d *Database) DeleteMedia(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_media", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var tx *sql.Tx
	tx, err = d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM thumbnails WHERE media_id = ?", id); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	var result sql.Result
	result, err = tx.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(ErrNotFound, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		err = ErrNotFound
		return err
	}

	err = tx.Commit()
	return err
}

// CalculateStats computes catalog-wide statistics.
func (d *Database) CalculateStats(ctx context.Context) (LibraryStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("calculate_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var stats LibraryStats
	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(size), 0),
			COALESCE(SUM(category = 'image'), 0),
			COALESCE(SUM(category = 'video'), 0),
			COALESCE(SUM(category = 'audio'), 0),
			COALESCE(SUM(category = 'document'), 0),
			COALESCE(SUM(category = 'project'), 0)
		FROM media
	`).Scan(
		&stats.TotalFiles, &stats.TotalBytes,
		&stats.TotalImages, &stats.TotalVideos, &stats.TotalAudio,
		&stats.TotalDocuments, &stats.TotalProjects,
	)
	if err != nil {
		return stats, err
	}

	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM thumbnails").Scan(&stats.Thumbnails)
	return stats, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMediaRecord(row rowScanner) (*MediaRecord, error) {
	var rec MediaRecord
	var metadata sql.NullString

	err := row.Scan(&rec.ID, &rec.Path, &rec.Name, &rec.Category,
		&rec.Size, &rec.CreatedAt, &rec.Fingerprint, &metadata)
	if err != nil {
		return nil, err
	}

	if metadata.Valid {
		rec.Metadata = json.RawMessage(metadata.String)
	}
	return &rec, nil
}

func collectMediaRecords(rows *sql.Rows) ([]MediaRecord, error) {
	records := []MediaRecord{}
	for rows.Next() {
		rec, err := scanMediaRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
