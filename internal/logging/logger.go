package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

var (
	// Logger is the global logger instance; nil until Init is called
	Logger *log.Logger

	logFile *os.File
	mu      sync.Mutex
)

// Init opens path for appending and routes all logging there. The
// terminal belongs to the palette, so nothing is ever written to stderr.
func Init(path string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", dir)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}
	logFile = f

	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	Logger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	Logger.Info("cmdpal started", "pid", os.Getpid())
	return nil
}

// InitWriter routes logging to w; used by tests
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	Logger = log.NewWithOptions(w, log.Options{Level: log.DebugLevel})
}

// Close closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if Logger != nil {
		Logger.Info("cmdpal shutting down")
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// WithPrefix returns a logger with a prefix. Before Init it returns a
// logger that discards everything.
func WithPrefix(prefix string) *log.Logger {
	if Logger != nil {
		return Logger.WithPrefix(prefix)
	}
	return log.NewWithOptions(io.Discard, log.Options{Prefix: prefix})
}
