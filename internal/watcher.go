package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify and forwards paths of files that appeared or were
// written directly inside one folder.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan string
	errors  chan error
	done    chan struct{}
	match   func(name string) bool
}

// NewWatcher watches dir (not its subfolders). match filters by file name.
func NewWatcher(dir string, match func(name string) bool) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher: fsWatcher,
		events:  make(chan string, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		match:   match,
	}
	go w.processEvents()
	return w, nil
}

// processEvents processes raw fsnotify events and filters/converts them
func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.match != nil && !w.match(filepath.Base(event.Name)) {
				continue
			}
			select {
			case w.events <- event.Name:
			case <-w.done:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Error channel is full, drop error
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and cleans up resources
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// Watch feeds files reported by w through Process once they have been quiet
// for settle, so half-copied files are not hashed. Files are still handled
// one at a time on the calling goroutine. It returns when ctx is done or the
// error policy stops the run.
func (o *Organizer) Watch(ctx context.Context, w *Watcher, source, destination string, settle time.Duration) (Summary, error) {
	sum := NewSummary()
	if err := o.Prepare(source, destination); err != nil {
		return sum, err
	}
	if err := o.openManifest(); err != nil {
		return sum, err
	}

	tick := settle / 4
	if tick < 50*time.Millisecond {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	o.reporter.RunStarted(source, destination, o.opts.DryRun)
	o.logger.Info("watching %s (settle %s)", source, settle)
	if o.manifest != nil {
		if err := o.manifest.LogRunStart(source, destination, o.opts.DryRun); err != nil {
			o.logger.Warn("manifest: %v", err)
		}
	}

	pending := make(map[string]time.Time)
	finish := func(err error) (Summary, error) {
		o.reporter.RunFinished(sum)
		o.logger.Info("watch finished: scanned=%d moved=%d skipped=%d failed=%d", sum.Scanned, sum.Moved, sum.Skipped, sum.Failed)
		if o.manifest != nil {
			if err := o.manifest.LogRunEnd(sum); err != nil {
				o.logger.Warn("manifest: %v", err)
			}
		}
		return sum, err
	}

	for {
		select {
		case <-ctx.Done():
			return finish(nil)

		case path, ok := <-w.Events():
			if !ok {
				return finish(nil)
			}
			pending[path] = time.Now()

		case err := <-w.Errors():
			o.logger.Warn("watcher: %v", err)

		case now := <-ticker.C:
			var ready []string
			for path, seen := range pending {
				if now.Sub(seen) >= settle {
					ready = append(ready, path)
				}
			}
			sort.Strings(ready)

			for _, path := range ready {
				delete(pending, path)
				info, err := o.fs.Stat(path)
				if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
					continue
				}
				if stop, reason := o.Process(path, destination, &sum); stop {
					sum.Aborted = true
					return finish(fmt.Errorf("%w: %s", ErrRunAborted, reason))
				}
			}
		}
	}
}
