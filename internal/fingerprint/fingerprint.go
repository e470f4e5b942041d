package fingerprint

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os"

	"media-catalog/internal/logging"
)

const (
	// DefaultSmallFileLimit is the size boundary between full-content
	// hashing and the surrogate hash.
	DefaultSmallFileLimit = 50 << 20 // 50 MB

	// DefaultSurrogateWindow is how many leading bytes of a large file
	// contribute to its surrogate hash.
	DefaultSurrogateWindow = 16 << 10 // 16 KiB
)

// Fingerprinter computes dedup keys for files with a size-tiered strategy.
type Fingerprinter struct {
	smallFileLimit  int64
	surrogateWindow int64
}

// New returns a Fingerprinter with the default size tiers.
func New() *Fingerprinter {
	return &Fingerprinter{
		smallFileLimit:  DefaultSmallFileLimit,
		surrogateWindow: DefaultSurrogateWindow,
	}
}

// NewWithLimits returns a Fingerprinter with custom tiers. Used by tests to
// exercise the large-file path without multi-gigabyte fixtures.
func NewWithLimits(smallFileLimit, surrogateWindow int64) *Fingerprinter {
	return &Fingerprinter{
		smallFileLimit:  smallFileLimit,
		surrogateWindow: surrogateWindow,
	}
}

// Compute returns a stable string fingerprint for the file at path.
//
// Files at or below the small-file limit are streamed in full through MD5,
// so exact duplicates are always detected. Larger files get a surrogate
// hash over {size, mtime, first window of content} instead of a full read;
// this deliberately trades precision for scan speed: two distinct large
// files with identical size, mtime, and leading bytes collide, and a large
// file edited only past the window with size/mtime preserved evades
// detection. Do not "fix" this by hashing large files in full.
//
// Surrogate fingerprints carry an "s" prefix so the two tiers can never
// collide with each other.
func (f *Fingerprinter) Compute(path string, info os.FileInfo) (string, error) {
	if info.Size() > f.smallFileLimit {
		return f.surrogate(path, info)
	}
	return f.full(path)
}

func (f *Fingerprinter) full(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after hashing: %v", path, err)
		}
	}()

	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func (f *Fingerprinter) surrogate(path string, info os.FileInfo) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after hashing: %v", path, err)
		}
	}()

	h := md5.New()
	fmt.Fprintf(h, "%d:%d:", info.Size(), info.ModTime().UnixNano())

	if _, err := io.CopyN(h, file, f.surrogateWindow); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to hash leading bytes of %s: %w", path, err)
	}

	return fmt.Sprintf("s%x", h.Sum(nil)), nil
}
