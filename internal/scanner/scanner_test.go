package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"media-catalog/internal/database"
	"media-catalog/internal/fingerprint"
	"media-catalog/internal/metadata"
	"media-catalog/internal/thumbnail"
)

func newTestScanner(t *testing.T) (*Scanner, *database.Database) {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	s := New(db, thumbnail.NewGenerator(""), metadata.NewExtractor(), fingerprint.New())
	return s, db
}

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	if err := jpeg.Encode(file, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("failed to close test image: %v", err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	if err := png.Encode(file, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("failed to close test image: %v", err)
	}
	return path
}

func writeBytes(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestScanMixedLibrary(t *testing.T) {
	s, db := newTestScanner(t)
	ctx := context.Background()
	dir := t.TempDir()

	photo := writeJPEG(t, dir, "photo.jpg", 400, 300)
	writeBytes(t, dir, "video.mp4", []byte("not a real video"))
	song := writeBytes(t, dir, "song.mp3", []byte("not a real mp3"))
	writePNG(t, dir, "icon.png", 20, 20)

	res, err := s.Scan(ctx, dir, Options{IncludeSubfolders: true}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if res.Added != 3 {
		t.Errorf("Expected 3 added, got %d", res.Added)
	}
	if res.Skipped != 1 {
		t.Errorf("Expected 1 skipped (junk icon), got %d", res.Skipped)
	}
	if res.Errors != 0 {
		t.Errorf("Expected 0 errors, got %d", res.Errors)
	}

	// The photo gets a real thumbnail and fallback metadata (no EXIF).
	rec, err := db.GetByPath(ctx, photo)
	if err != nil {
		t.Fatalf("photo record missing: %v", err)
	}
	if _, err := db.GetThumbnail(ctx, rec.ID); err != nil {
		t.Errorf("Expected a thumbnail for the photo: %v", err)
	}
	var imgMeta metadata.ImageMetadata
	if err := json.Unmarshal(rec.Metadata, &imgMeta); err != nil {
		t.Fatalf("photo metadata is not valid JSON: %v", err)
	}
	if !imgMeta.Fallback {
		t.Error("Expected fallback metadata for an EXIF-less photo")
	}
	if imgMeta.DateTaken == 0 {
		t.Error("Expected a filesystem-derived DateTaken")
	}

	// The undecodable audio file still ends the chain with a placeholder.
	songRec, err := db.GetByPath(ctx, song)
	if err != nil {
		t.Fatalf("song record missing: %v", err)
	}
	if _, err := db.GetThumbnail(ctx, songRec.ID); err != nil {
		t.Errorf("Expected a placeholder thumbnail for the song: %v", err)
	}

	// The junk icon never reached the catalog.
	if exists, _ := db.HasPath(ctx, filepath.Join(dir, "icon.png")); exists {
		t.Error("Expected the junk icon to be excluded from the catalog")
	}
}

func TestScanIdempotent(t *testing.T) {
	s, _ := newTestScanner(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeJPEG(t, dir, "a.jpg", 200, 200)
	writeJPEG(t, dir, "b.jpg", 300, 200)
	writeBytes(t, dir, "notes.txt", []byte("some text"))

	first, err := s.Scan(ctx, dir, Options{IncludeSubfolders: true}, nil)
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if first.Added != 3 || first.Skipped != 0 {
		t.Fatalf("Expected 3 added on first scan, got %+v", first)
	}

	second, err := s.Scan(ctx, dir, Options{IncludeSubfolders: true}, nil)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if second.Added != 0 {
		t.Errorf("Expected 0 added on re-scan, got %d", second.Added)
	}
	if second.Skipped != 3 {
		t.Errorf("Expected 3 skipped on re-scan, got %d", second.Skipped)
	}
	if second.Errors != 0 {
		t.Errorf("Expected 0 errors on re-scan, got %d", second.Errors)
	}
}

func TestScanSubfolderFlag(t *testing.T) {
	s, db := newTestScanner(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeJPEG(t, dir, "top.jpg", 200, 200)
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}
	nested := writeJPEG(t, sub, "nested.jpg", 200, 200)

	res, err := s.Scan(ctx, dir, Options{IncludeSubfolders: false}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.Added != 1 {
		t.Errorf("Expected only the top-level file, got %d added", res.Added)
	}
	if exists, _ := db.HasPath(ctx, nested); exists {
		t.Error("Nested file must not be ingested without subfolder recursion")
	}

	res, err = s.Scan(ctx, dir, Options{IncludeSubfolders: true}, nil)
	if err != nil {
		t.Fatalf("recursive scan failed: %v", err)
	}
	if res.Added != 1 || res.Skipped != 1 {
		t.Errorf("Expected the nested file added and the known file skipped, got %+v", res)
	}
}

func TestScanProjectsOptIn(t *testing.T) {
	s, _ := newTestScanner(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeBytes(t, dir, "session.als", []byte("project data"))
	writeBytes(t, dir, "random.xyz", []byte("unknown data"))

	res, err := s.Scan(ctx, dir, Options{}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.Added != 0 || res.Skipped != 0 || res.Errors != 0 {
		t.Errorf("Expected project and unknown files to be ignored, got %+v", res)
	}

	res, err = s.Scan(ctx, dir, Options{ScanProjects: true}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.Added != 1 {
		t.Errorf("Expected the project file with opt-in, got %+v", res)
	}
}

func TestScanHiddenEntriesIgnored(t *testing.T) {
	s, _ := newTestScanner(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeJPEG(t, dir, ".hidden.jpg", 200, 200)
	hiddenDir := filepath.Join(dir, ".cache")
	if err := os.Mkdir(hiddenDir, 0o755); err != nil {
		t.Fatalf("failed to create hidden directory: %v", err)
	}
	writeJPEG(t, hiddenDir, "inside.jpg", 200, 200)

	res, err := s.Scan(ctx, dir, Options{IncludeSubfolders: true}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.Added != 0 {
		t.Errorf("Expected dot-prefixed entries to be ignored, got %d added", res.Added)
	}
}

func TestScanCancellation(t *testing.T) {
	s, db := newTestScanner(t)
	dir := t.TempDir()

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		writeJPEG(t, dir, name, 200, 200)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel as soon as the first file enters the pipeline.
	report := func(ev ProgressEvent) {
		if ev.Status == StatusProcessing {
			cancel()
		}
	}

	res, err := s.Scan(ctx, dir, Options{IncludeSubfolders: true}, report)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if res.Errors != 0 {
		t.Errorf("Cancellation must not be counted as an error, got %d", res.Errors)
	}
	if res.Added >= 4 {
		t.Errorf("Expected an interrupted scan, but all %d files were added", res.Added)
	}

	// Whatever was persisted before the cancellation point is fully valid.
	records, listErr := db.ListMedia(context.Background(), "", 100, 0)
	if listErr != nil {
		t.Fatalf("ListMedia failed: %v", listErr)
	}
	if len(records) != res.Added {
		t.Errorf("Catalog has %d records but the result reports %d added", len(records), res.Added)
	}
	for _, rec := range records {
		if rec.Fingerprint == "" || rec.Path == "" {
			t.Errorf("Partial record persisted: %+v", rec)
		}
	}
}

func TestScanRootMissing(t *testing.T) {
	s, _ := newTestScanner(t)

	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{}, nil)
	if err == nil {
		t.Error("Expected an error for a missing scan root")
	}
}

func TestScanRootIsFile(t *testing.T) {
	s, _ := newTestScanner(t)
	dir := t.TempDir()
	path := writeBytes(t, dir, "file.txt", []byte("x"))

	_, err := s.Scan(context.Background(), path, Options{}, nil)
	if err == nil {
		t.Error("Expected an error when the scan root is a regular file")
	}
}

func TestSingleScanGuard(t *testing.T) {
	s, _ := newTestScanner(t)

	if !s.tryStartScan() {
		t.Fatal("Expected to acquire the scan slot")
	}

	if _, err := s.Scan(context.Background(), t.TempDir(), Options{}, nil); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("Expected ErrScanInProgress, got %v", err)
	}
	if !s.IsScanning() {
		t.Error("Expected IsScanning to report true while the slot is held")
	}

	s.finishScan()
	if s.IsScanning() {
		t.Error("Expected IsScanning to report false after release")
	}
}

func TestScanProgressSnapshot(t *testing.T) {
	s, _ := newTestScanner(t)
	dir := t.TempDir()
	writeJPEG(t, dir, "a.jpg", 200, 200)

	if _, err := s.Scan(context.Background(), dir, Options{}, nil); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	p := s.GetProgress()
	if p.Scanning {
		t.Error("Expected Scanning false after the scan finished")
	}
	if p.Added != 1 {
		t.Errorf("Expected progress snapshot with 1 added, got %+v", p)
	}
}

func TestDuplicateDetection(t *testing.T) {
	s, _ := newTestScanner(t)
	ctx := context.Background()
	dir := t.TempDir()

	original := writeJPEG(t, dir, "original.jpg", 300, 300)
	data, err := os.ReadFile(original)
	if err != nil {
		t.Fatalf("failed to read original: %v", err)
	}
	writeBytes(t, dir, "copy.jpg", data)
	writeJPEG(t, dir, "different.jpg", 301, 300)

	if _, err := s.Scan(ctx, dir, Options{IncludeSubfolders: true}, nil); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	groups, err := s.Duplicates(ctx)
	if err != nil {
		t.Fatalf("Duplicates failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("Expected 1 duplicate group, got %d", len(groups))
	}
	if len(groups[0].Records) != 2 {
		t.Errorf("Expected 2 records in the group, got %d", len(groups[0].Records))
	}
	for _, rec := range groups[0].Records {
		if rec.Path == filepath.Join(dir, "different.jpg") {
			t.Error("Unique file appeared in a duplicate group")
		}
	}
}

func TestGroupDuplicates(t *testing.T) {
	records := []database.MediaRecord{
		{ID: 1, Path: "/a", Fingerprint: "x"},
		{ID: 2, Path: "/b", Fingerprint: "x"},
		{ID: 3, Path: "/c", Fingerprint: "y"},
		{ID: 4, Path: "/d", Fingerprint: "y"},
		{ID: 5, Path: "/e", Fingerprint: "y"},
	}

	groups := GroupDuplicates(records)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].Fingerprint != "x" || len(groups[0].Records) != 2 {
		t.Errorf("Unexpected first group: %+v", groups[0])
	}
	if groups[1].Fingerprint != "y" || len(groups[1].Records) != 3 {
		t.Errorf("Unexpected second group: %+v", groups[1])
	}

	if got := GroupDuplicates(nil); len(got) != 0 {
		t.Errorf("Expected no groups from no records, got %d", len(got))
	}
}
