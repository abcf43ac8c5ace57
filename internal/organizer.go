package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeSkipped
)

// FileResult describes what happened to one source file.
type FileResult struct {
	Outcome  Outcome
	Source   string
	Dest     string // set when moved
	Existing string // set when skipped
	Hash     ContentHash
	Size     int64
	Class    Classification
}

// Summary holds the counters of a run.
type Summary struct {
	Scanned    int
	Moved      int
	Skipped    int
	Failed     int
	MovedBytes int64
	Aborted    bool
	Errors     *ErrorStats
}

func NewSummary() Summary {
	return Summary{Errors: NewErrorStats()}
}

type Options struct {
	DryRun   bool
	FailFast bool
	// Extensions limits which files are picked up. Empty means every file.
	Extensions []string
}

// Organizer moves files from a flat source folder into the year/month tree,
// one file at a time.
type Organizer struct {
	fs         afero.Fs
	classifier *DateClassifier
	resolver   *Resolver
	reporter   Reporter
	logger     *Logger
	opts       Options

	newManifest func() (*RunManifest, error)
	manifest    *RunManifest
}

func NewOrganizer(fs afero.Fs, classifier *DateClassifier, reporter Reporter, logger *Logger, opts Options) *Organizer {
	return &Organizer{
		fs:         fs,
		classifier: classifier,
		resolver:   NewResolver(fs),
		reporter:   reporter,
		logger:     logger,
		opts:       normalizeOptions(opts),
	}
}

func normalizeOptions(opts Options) Options {
	opts.Extensions = normalizeExtensions(opts.Extensions)
	return opts
}

// SetManifestFactory makes the organizer open a run manifest once the
// source has been validated; every outcome is appended to it.
func (o *Organizer) SetManifestFactory(open func() (*RunManifest, error)) {
	o.newManifest = open
}

func (o *Organizer) openManifest() error {
	if o.newManifest == nil || o.manifest != nil {
		return nil
	}
	m, err := o.newManifest()
	if err != nil {
		return err
	}
	o.manifest = m
	return nil
}

// Matches reports whether name has one of the configured extensions.
func (o *Organizer) Matches(name string) bool {
	if len(o.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range o.opts.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Prepare validates the source and creates the destination root. It fails
// with ErrSourceNotFound without touching anything.
func (o *Organizer) Prepare(source, destination string) error {
	info, err := o.fs.Stat(source)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", source, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, source)
	}

	if o.opts.DryRun {
		return nil
	}
	if err := o.fs.MkdirAll(destination, 0755); err != nil {
		return fmt.Errorf("failed to create destination %s: %w", destination, err)
	}
	return nil
}

// Run processes every eligible file directly inside source. Per-file errors
// are reported and counted; the run only stops early under FailFast or when
// the error stats say the problem is systemic.
func (o *Organizer) Run(source, destination string) (Summary, error) {
	sum := NewSummary()
	if err := o.Prepare(source, destination); err != nil {
		o.logger.Error("%v", err)
		return sum, err
	}
	if err := o.openManifest(); err != nil {
		return sum, err
	}

	entries, err := afero.ReadDir(o.fs, source)
	if err != nil {
		return sum, fmt.Errorf("failed to list %s: %w", source, err)
	}

	o.reporter.RunStarted(source, destination, o.opts.DryRun)
	o.logger.Info("run started: source=%s destination=%s dry_run=%t", source, destination, o.opts.DryRun)
	if o.manifest != nil {
		if err := o.manifest.LogRunStart(source, destination, o.opts.DryRun); err != nil {
			o.logger.Warn("manifest: %v", err)
		}
	}

	var reason string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || !o.Matches(entry.Name()) {
			continue
		}
		if stop, why := o.Process(filepath.Join(source, entry.Name()), destination, &sum); stop {
			sum.Aborted = true
			reason = why
			break
		}
	}

	o.reporter.RunFinished(sum)
	o.logger.Info("run finished: scanned=%d moved=%d skipped=%d failed=%d", sum.Scanned, sum.Moved, sum.Skipped, sum.Failed)
	if o.manifest != nil {
		if err := o.manifest.LogRunEnd(sum); err != nil {
			o.logger.Warn("manifest: %v", err)
		}
	}

	if sum.Aborted {
		return sum, fmt.Errorf("%w: %s", ErrRunAborted, reason)
	}
	return sum, nil
}

// Process organizes one file, updates sum and reports the outcome. It
// returns stop == true when the error policy says the run must end.
func (o *Organizer) Process(src, destination string, sum *Summary) (stop bool, reason string) {
	sum.Scanned++
	name := filepath.Base(src)

	res, err := o.OrganizeFile(src, destination)
	if err != nil {
		procErr := CategorizeError(src, err)
		sum.Failed++
		sum.Errors.Add(procErr)
		o.reporter.Failed(name, procErr)
		o.logger.Error("%v", procErr)
		if o.manifest != nil {
			if err := o.manifest.LogError(src, procErr); err != nil {
				o.logger.Warn("manifest: %v", err)
			}
		}

		if o.opts.FailFast {
			return true, procErr.Error()
		}
		return sum.Errors.ShouldAbort()
	}

	sum.Errors.ResetConsecutive()
	switch res.Outcome {
	case OutcomeMoved:
		sum.Moved++
		sum.MovedBytes += res.Size
		o.reporter.Moved(name, relPath(destination, res.Dest))
		o.logger.Info("moved %s -> %s (date from %s)", src, res.Dest, res.Class.Source)
		if o.manifest != nil {
			if err := o.manifest.LogMoved(res); err != nil {
				o.logger.Warn("manifest: %v", err)
			}
		}
	case OutcomeSkipped:
		sum.Skipped++
		o.reporter.Skipped(name, relPath(destination, res.Existing))
		o.logger.Info("skipped %s: same content as %s", src, res.Existing)
		if o.manifest != nil {
			if err := o.manifest.LogSkipped(res); err != nil {
				o.logger.Warn("manifest: %v", err)
			}
		}
	}
	return false, ""
}

// OrganizeFile classifies, hashes and resolves src, then moves it unless it
// is a duplicate or the run is dry.
func (o *Organizer) OrganizeFile(src, destination string) (FileResult, error) {
	res := FileResult{Source: src}

	info, err := o.fs.Stat(src)
	if err != nil {
		return res, fmt.Errorf("failed to stat %s: %w", src, err)
	}
	res.Size = info.Size()

	res.Class = o.classifier.Classify(src)
	folder := filepath.Join(destination, res.Class.YearDir(), res.Class.MonthLabel())
	o.logger.Debug("%s: %s/%s from %s", src, res.Class.YearDir(), res.Class.MonthLabel(), res.Class.Source)

	if !o.opts.DryRun {
		if err := o.fs.MkdirAll(folder, 0755); err != nil {
			return res, fmt.Errorf("failed to create directory %s: %w", folder, err)
		}
	}

	res.Hash, err = HashFile(o.fs, src)
	if err != nil {
		return res, err
	}

	decision, err := o.resolver.Resolve(folder, filepath.Base(src), res.Hash)
	if err != nil {
		return res, err
	}
	if decision.Skip {
		res.Outcome = OutcomeSkipped
		res.Existing = decision.Existing
		return res, nil
	}

	res.Outcome = OutcomeMoved
	res.Dest = decision.Path
	if o.opts.DryRun {
		return res, nil
	}
	if err := MoveFile(o.fs, src, decision.Path); err != nil {
		return res, err
	}
	return res, nil
}

// relPath is path relative to root, for display. It falls back to path.
func relPath(root, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
