package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ParseLogLevel parses a log level string. Unknown values mean error.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// sink is the file shared by a logger and the component loggers derived
// from it with Named.
type sink struct {
	mu    sync.Mutex
	level LogLevel
	out   io.WriteCloser
	path  string
	now   func() time.Time
}

// Logger writes levelled lines to a size-rotated log file. Loggers returned
// by Named share the parent's file and level.
type Logger struct {
	sink      *sink
	component string
}

// NewLogger creates a logger with the default rotation policy.
func NewLogger(level LogLevel, filePath string) (*Logger, error) {
	return NewLoggerFromConfig(LoggingConfig{
		Level:      level.String(),
		File:       filePath,
		MaxSizeMB:  DefaultLogMaxSizeMB,
		MaxBackups: DefaultLogMaxBackups,
		MaxAgeDays: DefaultLogMaxAgeDays,
	})
}

// NewLoggerFromConfig creates a logger from the logging section. No file is
// opened when the level is off or the path is empty; lumberjack creates the
// file on the first write.
func NewLoggerFromConfig(cfg LoggingConfig) (*Logger, error) {
	s := &sink{
		level: ParseLogLevel(cfg.Level),
		path:  cfg.File,
		now:   time.Now,
	}
	if s.level == LogLevelOff || cfg.File == "" {
		return &Logger{sink: s}, nil
	}

	path, err := expandHome(cfg.File)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, coreerr.WithDetails(coreerr.WithCause(coreerr.ErrIO, err), map[string]string{"path": path})
	}

	s.path = path
	s.out = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return &Logger{sink: s}, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", coreerr.WithCause(coreerr.ErrIO, err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Named returns a logger that tags every line with component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{sink: l.sink, component: component}
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.out == nil {
		return nil
	}
	return l.sink.out.Close()
}

// SetLevel changes the log level for this logger and every Named sibling.
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// FilePath returns the resolved log file path.
func (l *Logger) FilePath() string {
	return l.sink.path
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out == nil || level > s.level {
		return
	}

	var b strings.Builder
	b.WriteString(s.now().UTC().Format(logTimeFormat))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(level.String()))
	if l.component != "" {
		b.WriteString(" [")
		b.WriteString(l.component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	fmt.Fprintf(&b, format, args...)
	b.WriteByte('\n')

	_, _ = io.WriteString(s.out, b.String())
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{sink: &sink{level: LogLevelOff, now: time.Now}}
}
