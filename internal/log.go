package internal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Logger writes timestamped, leveled lines to a file. The console report is
// separate; the log is for after-the-fact diagnosis.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	c     io.Closer
	level LogLevel
	now   func() time.Time
}

// NewLogger appends to path. An empty path yields a logger that discards
// everything.
func NewLogger(path string, verbose bool) (*Logger, error) {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	if path == "" {
		return &Logger{w: io.Discard, level: level, now: time.Now}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return &Logger{w: f, c: f, level: level, now: time.Now}, nil
}

// NewWriterLogger logs to w without owning it.
func NewWriterLogger(w io.Writer, level LogLevel) *Logger {
	return &Logger{w: w, level: level, now: time.Now}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %-5s %s\n", l.now().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

func (l *Logger) Close() error {
	if l.c == nil {
		return nil
	}
	return l.c.Close()
}
