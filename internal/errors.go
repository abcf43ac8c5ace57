package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"syscall"
)

var (
	// ErrSourceNotFound is fatal for the whole run and is returned before
	// anything is created or moved.
	ErrSourceNotFound = errors.New("source path does not exist")

	// ErrSuffixesExhausted means every name up to MaxSuffix is taken by
	// different content.
	ErrSuffixesExhausted = errors.New("no free name within suffix limit")

	// ErrRunAborted is returned when the error policy stops a run early.
	ErrRunAborted = errors.New("run aborted")
)

// ErrorCategory represents the type of error encountered
type ErrorCategory string

const (
	ErrorCategoryIO       ErrorCategory = "io_error"      // File system, permissions, disk space
	ErrorCategoryNaming   ErrorCategory = "naming_error"  // No free destination name
	ErrorCategoryVanished ErrorCategory = "file_vanished" // Source vanished mid-run
	ErrorCategoryUnknown  ErrorCategory = "unknown_error" // Unexpected errors
)

// ErrorSeverity indicates how critical the error is
type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level issues (disk full, read-only fs)
	ErrorSeverityError    ErrorSeverity = "error"    // File-level issues (unreadable, vanished)
)

// ProcessError represents a categorized error during file processing
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error {
	return e.OriginalErr
}

// CategorizeError wraps err with a category, severity and a hint for the
// user. Typed errors are matched first; the message is a last resort for
// errors that lost their type on the way up.
func CategorizeError(filePath string, err error) *ProcessError {
	if err == nil {
		return nil
	}

	procErr := &ProcessError{
		FilePath:    filePath,
		OriginalErr: err,
		Category:    ErrorCategoryIO,
		Severity:    ErrorSeverityError,
	}
	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, syscall.ENOSPC) || strings.Contains(errStr, "no space left"):
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Free up disk space on the destination drive and run again"

	case errors.Is(err, syscall.EROFS) || strings.Contains(errStr, "read-only file system"):
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Destination filesystem is read-only - check mount options"

	case errors.Is(err, syscall.EMFILE) || strings.Contains(errStr, "too many open files"):
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "System file descriptor limit reached - increase ulimit"

	case errors.Is(err, fs.ErrPermission) || strings.Contains(errStr, "permission denied"):
		procErr.Suggestion = "Check permissions on the file and on its destination folder"

	case errors.Is(err, fs.ErrNotExist) || strings.Contains(errStr, "no such file"):
		procErr.Category = ErrorCategoryVanished
		procErr.Suggestion = "File disappeared during the run - check that the source drive is still connected"

	case errors.Is(err, ErrSuffixesExhausted):
		procErr.Category = ErrorCategoryNaming
		procErr.Suggestion = "Rename the file or clean up the destination month folder"

	case strings.Contains(errStr, "input/output error"):
		procErr.Suggestion = "I/O error - check disk health with SMART tools"

	default:
		procErr.Category = ErrorCategoryUnknown
		procErr.Suggestion = "Unexpected error - check the log file for details"
	}

	return procErr
}

// ErrorStats tracks error statistics during a run
type ErrorStats struct {
	Total       int
	Critical    int
	Errors      int
	ByCategory  map[ErrorCategory]int
	LastErrors  []*ProcessError // Last 5 errors for quick diagnosis
	Consecutive int             // Consecutive failures, reset on success
}

// MaxConsecutiveErrors stops a run that is failing on every file.
const MaxConsecutiveErrors = 10

func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
		LastErrors: make([]*ProcessError, 0, 5),
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	s.Total++
	s.Consecutive++
	s.ByCategory[err.Category]++

	switch err.Severity {
	case ErrorSeverityCritical:
		s.Critical++
	case ErrorSeverityError:
		s.Errors++
	}

	if len(s.LastErrors) >= 5 {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

func (s *ErrorStats) ResetConsecutive() {
	s.Consecutive = 0
}

// ShouldAbort returns true if the run should stop based on error patterns
func (s *ErrorStats) ShouldAbort() (bool, string) {
	if s.Critical > 0 {
		return true, "Critical system error detected - stopping before more files are touched"
	}
	if s.Consecutive >= MaxConsecutiveErrors {
		return true, fmt.Sprintf("%d consecutive errors detected - likely a systemic issue", s.Consecutive)
	}
	return false, ""
}

// GenerateReport creates a human-readable error report
func (s *ErrorStats) GenerateReport() string {
	var report strings.Builder

	fmt.Fprintf(&report, "\n❌ Run encountered %d errors:\n\n", s.Total)
	if s.Critical > 0 {
		fmt.Fprintf(&report, "  🔴 Critical: %d (system-level issues)\n", s.Critical)
	}
	if s.Errors > 0 {
		fmt.Fprintf(&report, "  🟠 Errors:   %d (file-level issues)\n", s.Errors)
	}

	report.WriteString("\nError categories:\n")
	cats := make([]string, 0, len(s.ByCategory))
	for cat := range s.ByCategory {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(&report, "  • %s: %d\n", cat, s.ByCategory[ErrorCategory(cat)])
	}

	report.WriteString("\nRecent errors:\n")
	for i, err := range s.LastErrors {
		fmt.Fprintf(&report, "\n%d. %s\n", i+1, err.FilePath)
		fmt.Fprintf(&report, "   Category: %s | Severity: %s\n", err.Category, err.Severity)
		fmt.Fprintf(&report, "   Error: %v\n", err.OriginalErr)
		if err.Suggestion != "" {
			fmt.Fprintf(&report, "   💡 Suggestion: %s\n", err.Suggestion)
		}
	}

	report.WriteString("\n")
	report.WriteString(s.generateSuggestions())
	return report.String()
}

func (s *ErrorStats) generateSuggestions() string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggested next steps:\n")

	if s.ByCategory[ErrorCategoryIO] > 0 {
		suggestions.WriteString("  • Check disk space and permissions\n")
	}
	if s.ByCategory[ErrorCategoryVanished] > 0 {
		suggestions.WriteString("  • Verify the source media (SD card, external drive) is properly connected\n")
	}
	if s.Consecutive >= 5 {
		suggestions.WriteString("  • Multiple consecutive errors suggest a systemic issue - check system resources\n")
	}
	suggestions.WriteString("  • Files that failed were left in the source folder; rerun once fixed\n")

	return suggestions.String()
}
