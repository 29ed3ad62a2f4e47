// Package logging provides lib-tools' logging infrastructure built on charmbracelet/log.
//
// It wraps charmbracelet/log to provide a centralized logger factory with component
// prefixes, level configuration, and stderr-only output. All log output goes to
// stderr; stdout is reserved for the build plan and validation reports.
//
// Usage:
//
//	// During CLI initialization (PersistentPreRun):
//	logging.Setup(verbose, quiet, jsonFormat)
//
//	// In each package:
//	var logger = logging.New("plan")
//	logger.Info("planning project", "name", "core")
//
// Setup must be called before New to ensure child loggers inherit the correct
// level and formatter settings. The charmbracelet/log library creates child
// loggers by copying state at creation time; later changes to the default
// logger do not propagate to existing children.
package logging
