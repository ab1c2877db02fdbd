// Package logging builds the logrus loggers used across dex-bridge.
//
// Headless commands log human-readable text to stderr. The terminal UI owns
// the screen, so it logs JSON to a file instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Logger is a logrus logger plus the file it writes to, if any
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New creates a logger at the given level. When path is empty the logger
// writes text to stderr, otherwise it appends JSON lines to path.
// Unknown levels fall back to info.
func New(level, path string) (*Logger, error) {
	logger := logrus.New()
	logger.SetLevel(parseLevel(level))

	if path == "" {
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return &Logger{Logger: logger}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger.SetOutput(file)
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Logger{Logger: logger, file: file}, nil
}

// Discard returns a logger that drops everything
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Close closes the log file. It is a no-op for stderr loggers.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
