package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"media-catalog/internal/logging"

	"github.com/disintegration/imaging"
)

const (
	// videoFrameTimeout bounds a single ffmpeg frame extraction.
	videoFrameTimeout = 30 * time.Second

	// lateSeekThreshold: videos larger than this seek further in, past
	// static intro frames.
	lateSeekThreshold = 100 << 20 // 100 MB

	earlySeekOffset = "00:00:01"
	lateSeekOffset  = "00:00:10"
)

// VideoFrame extracts a single frame from the video at path and turns it
// into a thumbnail. The extraction runs ffmpeg into a temporary file,
// bounded by a wall-clock timeout; on expiry or process failure the error
// is returned and the caller keeps the record without a thumbnail. If the
// parent context is cancelled while ffmpeg runs, the subprocess is killed,
// the temp file is still cleaned up, and the cancellation propagates.
func (g *Generator) VideoFrame(ctx context.Context, path string, size int64) ([]byte, error) {
	tmp, err := os.CreateTemp("", "media-catalog-frame-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		logging.Warn("failed to close temp file %s: %v", tmpPath, err)
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove temp frame %s: %v", tmpPath, err)
		}
	}()

	offset := earlySeekOffset
	if size > lateSeekThreshold {
		offset = lateSeekOffset
	}

	tctx, cancel := context.WithTimeout(ctx, videoFrameTimeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, g.ffmpegPath,
		"-ss", offset,
		"-i", path,
		"-frames:v", "1",
		"-y", tmpPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if tctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("ffmpeg frame extraction timed out after %v for %s", videoFrameTimeout, path)
		}
		return nil, fmt.Errorf("ffmpeg frame extraction failed for %s: %w (stderr: %s)", path, err, stderr.String())
	}

	img, err := imaging.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame for %s: %w", path, err)
	}

	return encodeThumb(img)
}
