package internal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// jpegWithExif builds the smallest JPEG goexif will parse: SOI, an APP1
// segment holding a little-endian TIFF with IFD0 -> Exif IFD ->
// DateTimeOriginal, then EOI. extra is appended after EOI so tests can
// produce different content with the same capture date.
func jpegWithExif(dateTimeOriginal string, extra string) []byte {
	le := binary.LittleEndian
	val := append([]byte(dateTimeOriginal), 0)

	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, le, uint16(42))
	binary.Write(&tiff, le, uint32(8))

	// IFD0 at 8: ExifIFDPointer -> 26
	binary.Write(&tiff, le, uint16(1))
	binary.Write(&tiff, le, uint16(0x8769))
	binary.Write(&tiff, le, uint16(4))
	binary.Write(&tiff, le, uint32(1))
	binary.Write(&tiff, le, uint32(26))
	binary.Write(&tiff, le, uint32(0))

	// Exif IFD at 26: DateTimeOriginal, ASCII, value at 44
	binary.Write(&tiff, le, uint16(1))
	binary.Write(&tiff, le, uint16(0x9003))
	binary.Write(&tiff, le, uint16(2))
	binary.Write(&tiff, le, uint32(len(val)))
	binary.Write(&tiff, le, uint32(44))
	binary.Write(&tiff, le, uint32(0))
	tiff.Write(val)

	app1 := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(app1)+2))
	out.Write(app1)
	out.Write([]byte{0xFF, 0xD9})
	out.WriteString(extra)
	return out.Bytes()
}

// writeFile creates path with content and, when mtime is non-zero, sets its
// modification time.
func writeFile(t *testing.T, fs afero.Fs, path string, content []byte, mtime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, content, 0644))
	if !mtime.IsZero() {
		require.NoError(t, fs.Chtimes(path, mtime, mtime))
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(b)
}

func mustHash(t *testing.T, content string) ContentHash {
	t.Helper()
	h, err := HashReader(bytes.NewReader([]byte(content)))
	require.NoError(t, err)
	return h
}

// failingFs refuses to open the listed paths.
type failingFs struct {
	afero.Fs
	fail map[string]error
}

func (f *failingFs) Open(name string) (afero.File, error) {
	if err, ok := f.fail[name]; ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return f.Fs.Open(name)
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err, ok := f.fail[name]; ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

// recordingReporter keeps every call for assertions.
type recordingReporter struct {
	lines    []string
	finished *Summary
}

func (r *recordingReporter) RunStarted(source, destination string, dryRun bool) {
	r.lines = append(r.lines, fmt.Sprintf("start %s %s %t", source, destination, dryRun))
}
func (r *recordingReporter) Moved(name, rel string) {
	r.lines = append(r.lines, fmt.Sprintf("moved %s %s", name, rel))
}
func (r *recordingReporter) Skipped(name, existingRel string) {
	r.lines = append(r.lines, fmt.Sprintf("skipped %s %s", name, existingRel))
}
func (r *recordingReporter) Failed(name string, err *ProcessError) {
	r.lines = append(r.lines, fmt.Sprintf("failed %s %s", name, err.Category))
}
func (r *recordingReporter) RunFinished(sum Summary) {
	r.finished = &sum
}

func quietLogger() *Logger {
	return NewWriterLogger(io.Discard, LevelDebug)
}
