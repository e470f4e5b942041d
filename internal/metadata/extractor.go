package metadata

import (
	"os"
	"strconv"
	"time"

	"media-catalog/internal/logging"

	"github.com/dhowden/tag"
	"github.com/rwcarlsen/goexif/exif"
)

// exifTimeLayout is the timestamp format used by EXIF date tags.
const exifTimeLayout = "2006:01:02 15:04:05"

// minValidYear rejects obviously bogus embedded dates (epoch underflow,
// camera clocks never set, scanners stamping 1900-era defaults).
const minValidYear = 1970

// Extractor produces per-category metadata with graceful fallback.
// Extraction never fails the pipeline: every method returns a usable,
// non-nil value even when the rich read fails outright.
type Extractor struct{}

// NewExtractor returns a metadata Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractImage reads embedded EXIF data from the image at path.
//
// Every date-like field is range-checked; values that fail to parse or
// whose year is before 1970 are discarded. If no valid date survives, the
// filesystem timestamps are injected instead and Fallback is set. An EXIF
// read failure yields the minimal fallback object with Error populated.
func (e *Extractor) ExtractImage(path string, info os.FileInfo) *ImageMetadata {
	mtime := info.ModTime().UnixMilli()

	file, err := os.Open(path)
	if err != nil {
		return &ImageMetadata{
			DateTaken:    mtime,
			DateModified: mtime,
			Fallback:     true,
			Error:        err.Error(),
		}
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after metadata read: %v", path, err)
		}
	}()

	x, err := exif.Decode(file)
	if err != nil {
		logging.Debug("EXIF decode failed for %s: %v", path, err)
		return &ImageMetadata{
			DateTaken:    mtime,
			DateModified: mtime,
			Fallback:     true,
			Error:        err.Error(),
		}
	}

	meta := &ImageMetadata{}

	meta.DateTaken = validDate(x, exif.DateTimeOriginal)
	if meta.DateTaken == 0 {
		meta.DateTaken = validDate(x, exif.DateTimeDigitized)
	}
	meta.DateModified = validDate(x, exif.DateTime)

	if meta.DateTaken == 0 && meta.DateModified == 0 {
		meta.DateTaken = mtime
		meta.DateModified = mtime
		meta.Fallback = true
	}

	if lat, long, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &long
	}

	meta.CameraMake = stringField(x, exif.Make)
	meta.CameraModel = stringField(x, exif.Model)
	meta.LensModel = stringField(x, exif.LensModel)
	meta.ExposureTime = rationalString(x, exif.ExposureTime)
	meta.FNumber = rationalFloat(x, exif.FNumber)
	meta.FocalLength = rationalFloat(x, exif.FocalLength)
	meta.ISO = intField(x, exif.ISOSpeedRatings)

	return meta
}

// ExtractAudio reads common tag fields and the first embedded cover image
// from the audio file at path. A tag-read failure yields an empty metadata
// object rather than an error; cover art may be nil.
func (e *Extractor) ExtractAudio(path string) (*AudioMetadata, []byte) {
	file, err := os.Open(path)
	if err != nil {
		logging.Debug("failed to open %s for tag read: %v", path, err)
		return &AudioMetadata{}, nil
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after tag read: %v", path, err)
		}
	}()

	m, err := tag.ReadFrom(file)
	if err != nil {
		logging.Debug("tag read failed for %s: %v", path, err)
		return &AudioMetadata{}, nil
	}

	meta := &AudioMetadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Genre:  m.Genre(),
		Year:   m.Year(),
	}

	var art []byte
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		meta.HasCoverArt = true
		art = pic.Data
	}

	return meta, art
}

// ExtractStat returns filesystem-timestamp metadata with the fallback
// marker set. Used for video (container parsing deliberately skipped) and
// for document/project files.
func (e *Extractor) ExtractStat(info os.FileInfo) *StatMetadata {
	mtime := info.ModTime().UnixMilli()
	return &StatMetadata{
		DateCreated:  mtime,
		DateModified: mtime,
		Fallback:     true,
	}
}

// validDate extracts and range-checks a single EXIF date tag. Returns the
// epoch milliseconds, or 0 when the tag is absent, unparsable, or predates
// 1970.
func validDate(x *exif.Exif, field exif.FieldName) int64 {
	tagVal, err := x.Get(field)
	if err != nil {
		return 0
	}
	s, err := tagVal.StringVal()
	if err != nil {
		return 0
	}
	return ValidateDate(s)
}

// ValidateDate parses an EXIF-format timestamp and applies the date sanity
// rule: anything unparsable or before 1970 is invalid and returns 0.
func ValidateDate(s string) int64 {
	t, err := time.ParseInLocation(exifTimeLayout, s, time.Local)
	if err != nil {
		return 0
	}
	if t.Year() < minValidYear {
		return 0
	}
	return t.UnixMilli()
}

func stringField(x *exif.Exif, field exif.FieldName) string {
	tagVal, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tagVal.StringVal()
	if err != nil {
		return ""
	}
	return s
}

func intField(x *exif.Exif, field exif.FieldName) int {
	tagVal, err := x.Get(field)
	if err != nil {
		return 0
	}
	v, err := tagVal.Int(0)
	if err != nil {
		return 0
	}
	return v
}

func rationalFloat(x *exif.Exif, field exif.FieldName) float64 {
	num, den, err := rational(x, field)
	if err != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// rationalString renders a rational tag the way photographers read it:
// sub-second exposures stay fractional ("1/250"), everything else decays
// to a plain number.
func rationalString(x *exif.Exif, field exif.FieldName) string {
	num, den, err := rational(x, field)
	if err != nil || den == 0 {
		return ""
	}
	if num < den {
		return strconv.FormatInt(num, 10) + "/" + strconv.FormatInt(den, 10)
	}
	return strconv.FormatInt(num/den, 10)
}

func rational(x *exif.Exif, field exif.FieldName) (int64, int64, error) {
	tagVal, err := x.Get(field)
	if err != nil {
		return 0, 0, err
	}
	return tagVal.Rat2(0)
}
