package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Level aliases for charmbracelet/log levels.
// Re-exported so consumers do not need to import charmbracelet/log directly.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
	LevelFatal = log.FatalLevel
)

// Setup configures the global logging defaults. Call once during CLI initialization.
//
// Parameters:
//   - verbose: sets level to Debug (shows all messages)
//   - quiet: sets level to Error (hides Info and Warn messages)
//   - jsonFormat: switches to JSON formatter (NDJSON, suitable for CI/log aggregation)
//
// If both verbose and quiet are set, quiet wins.
//
// All loggers write to stderr to keep stdout clean for structured output.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix.
//
// The returned logger inherits global level and output settings from the
// default logger at creation time. An empty component string produces a
// logger without a prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// ParseLevel maps a build-option log level name ("debug", "info", "warn",
// "error") to a logger level. Empty input yields LevelInfo.
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// SetLevel overrides the level of the default logger.
func SetLevel(level log.Level) {
	log.SetLevel(level)
}

// SetOutput overrides the output writer for the default logger.
//
// This is primarily useful for testing, where output can be captured
// with a bytes.Buffer. Remember to restore the original output using
// t.Cleanup.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
