package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"media-catalog/internal/logging"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// Width and Height are the fixed nominal thumbnail dimensions.
	Width  = 300
	Height = 300

	// Format is the encoding tag stored alongside thumbnail bytes.
	Format = "jpeg"

	// MinPixelDimension is the junk-image threshold: images below this in
	// both dimensions are treated as icons/junk and skipped.
	MinPixelDimension = 64

	jpegQuality = 80
)

// Generator produces fixed-size preview images per media category, each
// with its own fallback chain. A Generator is safe for use from a single
// scan at a time; the pipeline is sequential by design.
type Generator struct {
	ffmpegPath string
}

// NewGenerator returns a thumbnail Generator. ffmpegPath may be empty to
// resolve "ffmpeg" from PATH.
func NewGenerator(ffmpegPath string) *Generator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Generator{ffmpegPath: ffmpegPath}
}

// ProbeDimensions decodes only the image header and returns its pixel
// dimensions. Much cheaper than a full decode.
func ProbeDimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after dimension probe: %v", path, err)
		}
	}()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// IsJunkImage reports whether the image at path is below the minimum pixel
// threshold in both dimensions. Probe failures are not junk: an image we
// cannot decode the header of still gets its chance at ingestion.
func IsJunkImage(path string) bool {
	w, h, err := ProbeDimensions(path)
	if err != nil {
		return false
	}
	return w < MinPixelDimension && h < MinPixelDimension
}

// Image generates a thumbnail for the image at path: resize-to-cover into
// the nominal size, encoded lossy. Single step; callers keep the record
// without a thumbnail on failure.
func (g *Generator) Image(path string) ([]byte, error) {
	img, err := g.decodeImage(path)
	if err != nil {
		return nil, fmt.Errorf("image decode failed for %s: %w", path, err)
	}
	return encodeThumb(img)
}

// decodeImage loads an image, preferring the libvips decode-time-shrink
// path when available, then imaging with auto-orientation, then the plain
// stdlib decoder.
func (g *Generator) decodeImage(path string) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := loadWithVips(path, Width, Height)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s: %v, falling back to imaging", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	logging.Debug("imaging.Open failed for %s: %v, trying stdlib decode", path, err)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after decode: %v", path, err)
		}
	}()

	img, _, err = image.Decode(file)
	return img, err
}

// encodeThumb resizes to cover the nominal dimensions and encodes as JPEG.
func encodeThumb(img image.Image) ([]byte, error) {
	thumb := imaging.Fill(img, Width, Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// thumbFromBytes decodes an in-memory image (e.g. embedded cover art) and
// produces a thumbnail from it.
func thumbFromBytes(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded image: %w", err)
	}
	return encodeThumb(img)
}
