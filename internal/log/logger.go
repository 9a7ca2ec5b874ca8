// Package log provides structured logging to the Pantry log file.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file created inside the log directory.
const FileName = "pantry.log"

// Logger writes structured records to a log file.
type Logger struct {
	file *os.File
	*slog.Logger
}

// New creates a logger that appends text records to <logDir>/pantry.log.
// When verbose is set, records are also mirrored to stderr.
func New(logDir string, level slog.Level, verbose bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, FileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = file
	if verbose {
		w = io.MultiWriter(file, os.Stderr)
	}

	return &Logger{
		file:   file,
		Logger: NewWithWriter(w, level),
	}, nil
}

// NewWithWriter builds a text slog logger on w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps debug, info, warn and error to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Global logger instance
var globalLogger *Logger

// Init initializes the global logger and makes it the slog default.
// Go's standard log package is redirected to the same file so stray
// log.Printf calls never reach the terminal.
func Init(logDir string, level slog.Level, verbose bool) (*slog.Logger, error) {
	logger, err := New(logDir, level, verbose)
	if err != nil {
		return nil, err
	}
	globalLogger = logger

	slog.SetDefault(logger.Logger)
	stdlog.SetOutput(logger.file)
	stdlog.SetFlags(stdlog.Ldate | stdlog.Ltime)

	return logger.Logger, nil
}

// Default returns the global logger, or slog.Default before Init.
func Default() *slog.Logger {
	if globalLogger != nil {
		return globalLogger.Logger
	}
	return slog.Default()
}

// Close closes the global logger.
func Close() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}
