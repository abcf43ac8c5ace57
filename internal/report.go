package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Reporter receives the per-file outcomes of a run as they happen.
type Reporter interface {
	RunStarted(source, destination string, dryRun bool)
	Moved(name, rel string)
	Skipped(name, existingRel string)
	Failed(name string, err *ProcessError)
	RunFinished(sum Summary)
}

var rule = strings.Repeat("=", 100)

// ConsoleReporter prints the human-facing report.
type ConsoleReporter struct {
	w      io.Writer
	dryRun bool

	heading *color.Color
	ok      *color.Color
	skip    *color.Color
	fail    *color.Color
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		w:       w,
		heading: color.New(color.Bold),
		ok:      color.New(color.FgGreen),
		skip:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
	}
}

func (r *ConsoleReporter) section(title string) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, rule)
	r.heading.Fprintln(r.w, title)
	fmt.Fprintln(r.w, rule)
}

func (r *ConsoleReporter) prefix() string {
	if r.dryRun {
		return "[dry-run] "
	}
	return ""
}

func (r *ConsoleReporter) RunStarted(source, destination string, dryRun bool) {
	r.dryRun = dryRun
	r.section("📁 Routes:")
	fmt.Fprintf(r.w, "  📸 Organizing photos from: %s\n", source)
	fmt.Fprintf(r.w, "  📂 Saving into: %s\n", destination)
	if dryRun {
		r.skip.Fprintln(r.w, "  Dry run mode: no files will be moved")
	}
	r.section("🚀 Starting the organization process...")
}

func (r *ConsoleReporter) Moved(name, rel string) {
	r.ok.Fprintf(r.w, "  ✅ %sMoved: %s → %s\n", r.prefix(), name, rel)
}

func (r *ConsoleReporter) Skipped(name, existingRel string) {
	r.skip.Fprintf(r.w, "  🔁 %sAlready exists (skipped): %s", r.prefix(), name)
	if existingRel != "" {
		r.skip.Fprintf(r.w, " = %s", existingRel)
	}
	fmt.Fprintln(r.w)
}

func (r *ConsoleReporter) Failed(name string, err *ProcessError) {
	r.fail.Fprintf(r.w, "  ❌ Failed: %s: %v\n", name, err.OriginalErr)
}

func (r *ConsoleReporter) RunFinished(sum Summary) {
	r.section("🏁 Organization process completed:")
	if sum.Aborted {
		r.fail.Fprintln(r.w, "  ⛔ Run stopped early")
	} else if sum.Failed == 0 {
		fmt.Fprintln(r.w, "  🎉 Photos organized successfully.")
	}
	fmt.Fprintf(r.w, "  📦 Moved: %d (%s)\n", sum.Moved, humanize.Bytes(uint64(sum.MovedBytes)))
	fmt.Fprintf(r.w, "  🚫 Skipped (duplicates): %d\n", sum.Skipped)
	if sum.Failed > 0 {
		r.fail.Fprintf(r.w, "  ❌ Failed: %d\n", sum.Failed)
	}
	fmt.Fprintln(r.w)
}
