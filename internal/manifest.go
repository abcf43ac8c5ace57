package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ManifestDir is where run manifests live, relative to the destination root.
// The library walker skips dot-directories so it never shows up as a year.
const ManifestDir = ".photofiler/runs"

// RunManifest is an append-only JSONL log of one run. Nothing reads it back
// during a run; it exists for the user.
type RunManifest struct {
	ID   string
	Path string

	file afero.File
	now  func() time.Time
}

// ManifestEvent represents a single event in the manifest log
type ManifestEvent struct {
	Event    string `json:"event"`
	Ts       string `json:"ts"`
	RunID    string `json:"run_id"`
	Src      string `json:"src,omitempty"`
	Dest     string `json:"dest,omitempty"`
	Existing string `json:"existing,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Date     string `json:"date_source,omitempty"`

	Error           string `json:"error,omitempty"`
	ErrorCategory   string `json:"error_category,omitempty"`
	ErrorSeverity   string `json:"error_severity,omitempty"`
	ErrorSuggestion string `json:"error_suggestion,omitempty"`

	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
	Scanned     int    `json:"scanned,omitempty"`
	Moved       int    `json:"moved,omitempty"`
	Skipped     int    `json:"skipped,omitempty"`
	Failed      int    `json:"failed,omitempty"`
	Aborted     bool   `json:"aborted,omitempty"`
}

// NewRunID is a sortable timestamp plus a short random tail so two runs in
// the same second do not share a file.
func NewRunID(now time.Time) string {
	return fmt.Sprintf("%s-%s", now.Format("2006-01-02-150405"), uuid.NewString()[:8])
}

func NewRunManifest(fs afero.Fs, destination string) (*RunManifest, error) {
	now := time.Now()
	id := NewRunID(now)
	dir := filepath.Join(destination, ManifestDir)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	path := filepath.Join(dir, id+".jsonl")
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest file: %w", err)
	}

	return &RunManifest{ID: id, Path: path, file: f, now: time.Now}, nil
}

func (m *RunManifest) LogRunStart(source, destination string, dryRun bool) error {
	return m.write(ManifestEvent{
		Event:       "run_start",
		Source:      source,
		Destination: destination,
		DryRun:      dryRun,
	})
}

func (m *RunManifest) LogMoved(r FileResult) error {
	return m.write(ManifestEvent{
		Event: "moved",
		Src:   r.Source,
		Dest:  r.Dest,
		Hash:  string(r.Hash),
		Size:  r.Size,
		Date:  string(r.Class.Source),
	})
}

func (m *RunManifest) LogSkipped(r FileResult) error {
	return m.write(ManifestEvent{
		Event:    "skipped_duplicate",
		Src:      r.Source,
		Existing: r.Existing,
		Hash:     string(r.Hash),
		Size:     r.Size,
	})
}

func (m *RunManifest) LogError(src string, procErr *ProcessError) error {
	return m.write(ManifestEvent{
		Event:           "error",
		Src:             src,
		Error:           procErr.OriginalErr.Error(),
		ErrorCategory:   string(procErr.Category),
		ErrorSeverity:   string(procErr.Severity),
		ErrorSuggestion: procErr.Suggestion,
	})
}

func (m *RunManifest) LogRunEnd(sum Summary) error {
	return m.write(ManifestEvent{
		Event:   "run_end",
		Scanned: sum.Scanned,
		Moved:   sum.Moved,
		Skipped: sum.Skipped,
		Failed:  sum.Failed,
		Aborted: sum.Aborted,
	})
}

func (m *RunManifest) Close() error {
	if m.file == nil {
		return nil
	}
	return m.file.Close()
}

// write writes a manifest event as a JSON line
func (m *RunManifest) write(event ManifestEvent) error {
	event.Ts = m.now().UTC().Format(time.RFC3339)
	event.RunID = m.ID

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := m.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to manifest: %w", err)
	}
	return m.file.Sync()
}
