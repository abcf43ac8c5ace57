package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

const exifDateLayout = "2006:01:02 15:04:05"

// DateSource records where a classification came from.
type DateSource string

const (
	DateSourceExif     DateSource = "exif"
	DateSourceExifTool DateSource = "exiftool"
	DateSourceModTime  DateSource = "modtime"
	DateSourceNow      DateSource = "now"
)

// Classification is the year/month bucket a file is filed under.
type Classification struct {
	Year   int
	Month  time.Month
	Source DateSource
}

// YearDir is the first level of the destination layout, e.g. "2023".
func (c Classification) YearDir() string {
	return fmt.Sprintf("%04d", c.Year)
}

// MonthLabel is the second level, e.g. "06 June".
func (c Classification) MonthLabel() string {
	return fmt.Sprintf("%02d %s", int(c.Month), c.Month.String())
}

// CaptureTimeReader extracts an embedded capture timestamp. A missing or
// unreadable timestamp is reported as ok == false, never as an error.
type CaptureTimeReader interface {
	CaptureTime(path string) (t time.Time, ok bool)
	Source() DateSource
}

// ExifReader reads DateTimeOriginal with goexif.
type ExifReader struct {
	fs afero.Fs
}

func NewExifReader(fs afero.Fs) *ExifReader {
	return &ExifReader{fs: fs}
}

func (r *ExifReader) Source() DateSource { return DateSourceExif }

func (r *ExifReader) CaptureTime(path string) (time.Time, bool) {
	f, err := r.fs.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, false
	}
	dateStr, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(exifDateLayout, strings.TrimRight(dateStr, "\x00 "))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ExifToolReader asks the exiftool binary, which understands far more
// container formats (HEIC, RAW, video) than goexif. It only works on the
// real filesystem.
type ExifToolReader struct {
	et *exiftool.Exiftool
}

// NewExifToolReader starts a long-lived exiftool process. Close it when done.
func NewExifToolReader() (*ExifToolReader, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExifToolReader{et: et}, nil
}

func (r *ExifToolReader) Source() DateSource { return DateSourceExifTool }

func (r *ExifToolReader) CaptureTime(path string) (time.Time, bool) {
	metas := r.et.ExtractMetadata(path)
	if len(metas) == 0 || metas[0].Err != nil {
		return time.Time{}, false
	}
	for _, key := range []string{"DateTimeOriginal", "CreateDate"} {
		s, err := metas[0].GetString(key)
		if err != nil || len(s) < len(exifDateLayout) {
			continue
		}
		// exiftool may append sub-seconds or a zone offset
		t, err := time.Parse(exifDateLayout, s[:len(exifDateLayout)])
		if err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

func (r *ExifToolReader) Close() error {
	return r.et.Close()
}

// DateClassifier buckets files by capture date, falling back to the file's
// modification time when no reader finds one.
type DateClassifier struct {
	fs      afero.Fs
	readers []CaptureTimeReader
	now     func() time.Time
}

func NewDateClassifier(fs afero.Fs, readers ...CaptureTimeReader) *DateClassifier {
	return &DateClassifier{fs: fs, readers: readers, now: time.Now}
}

// Classify never fails: it always lands on some date.
func (c *DateClassifier) Classify(path string) Classification {
	for _, r := range c.readers {
		if t, ok := r.CaptureTime(path); ok {
			return Classification{Year: t.Year(), Month: t.Month(), Source: r.Source()}
		}
	}

	if t, err := getFileModTime(c.fs, path); err == nil {
		return Classification{Year: t.Year(), Month: t.Month(), Source: DateSourceModTime}
	}

	t := c.now()
	return Classification{Year: t.Year(), Month: t.Month(), Source: DateSourceNow}
}

// getFileModTime fallback to file modification time
func getFileModTime(fs afero.Fs, path string) (time.Time, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}
