package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"os/exec"
	"time"

	"media-catalog/internal/logging"

	"github.com/disintegration/imaging"
)

const (
	// waveformTimeout bounds the waveform render. Longer than the video
	// frame timeout: decoding a minute of audio is slower than seeking a
	// keyframe.
	waveformTimeout = 60 * time.Second

	// waveformWindowSeconds limits how much of the track is decoded for
	// the waveform, bounding cost on long recordings.
	waveformWindowSeconds = "60"
)

// Audio generates a thumbnail for an audio file using a three-step
// fallback chain: embedded cover art, then an ffmpeg-rendered waveform
// over the leading window of the track, then a generated placeholder.
// The final step has no external dependency and always succeeds, so every
// audio record that reaches this point gets some thumbnail; the only
// error returned is cancellation.
func (g *Generator) Audio(ctx context.Context, path string, coverArt []byte) ([]byte, error) {
	if len(coverArt) > 0 {
		data, err := thumbFromBytes(coverArt)
		if err == nil {
			return data, nil
		}
		logging.Warn("embedded cover art unusable for %s: %v", path, err)
	}

	data, err := g.waveform(ctx, path)
	if err == nil {
		return data, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logging.Debug("waveform render failed for %s: %v, using placeholder", path, err)

	return g.Placeholder(), nil
}

// waveform renders the track's waveform into a fixed-size image via
// ffmpeg's showwavespic filter, reading only the leading window.
func (g *Generator) waveform(ctx context.Context, path string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "media-catalog-wave-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		logging.Warn("failed to close temp file %s: %v", tmpPath, err)
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove temp waveform %s: %v", tmpPath, err)
		}
	}()

	tctx, cancel := context.WithTimeout(ctx, waveformTimeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, g.ffmpegPath,
		"-t", waveformWindowSeconds,
		"-i", path,
		"-filter_complex", fmt.Sprintf("showwavespic=s=%dx%d:colors=0x4a90d9", Width, Height),
		"-frames:v", "1",
		"-y", tmpPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if tctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("waveform render timed out after %v for %s", waveformTimeout, path)
		}
		return nil, fmt.Errorf("ffmpeg waveform failed for %s: %w (stderr: %s)", path, err, stderr.String())
	}

	img, err := imaging.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode waveform for %s: %w", path, err)
	}

	return encodeThumb(img)
}

// Placeholder returns a generic audio thumbnail: a glyph of idealized
// waveform bars over a flat background. Drawn in-process so it cannot fail.
func (g *Generator) Placeholder() []byte {
	background := color.NRGBA{R: 0x26, G: 0x2b, B: 0x33, A: 0xff}
	bar := color.NRGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff}

	img := imaging.New(Width, Height, background)

	// Symmetric bar heights, tallest in the middle.
	heights := []int{40, 80, 120, 170, 210, 170, 120, 80, 40}
	barWidth := 16
	gap := (Width - len(heights)*barWidth) / (len(heights) + 1)

	x := gap
	for _, h := range heights {
		top := (Height - h) / 2
		fillRect(img, x, top, barWidth, h, bar)
		x += barWidth + gap
	}

	var buf bytes.Buffer
	// Encoding a valid in-memory image to a bytes.Buffer cannot fail.
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	return buf.Bytes()
}

func fillRect(img *image.NRGBA, x, y, w, h int, c color.NRGBA) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			img.SetNRGBA(px, py, c)
		}
	}
}
