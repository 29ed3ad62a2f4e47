package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the settings are unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the settings
	// work but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "build.log_level"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	return vr.filter(SeverityError)
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	return vr.filter(SeverityWarning)
}

func (vr *ValidationResult) filter(severity ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json", "yaml"}
)

// Validate checks the settings for correctness and completeness, including
// unknown keys when meta is non-nil. Check HasErrors() to determine whether
// the settings are usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateBuild(vr, &cfg.Build)
	validateEnvironment(vr, cfg.Environment)
	validateUnknownKeys(vr, meta)

	return vr
}

func validateBuild(vr *ValidationResult, b *BuildConfig) {
	if b.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(b.LogLevel)) {
		addError(vr, "build.log_level",
			fmt.Sprintf("unrecognized log level %q; must be one of: %s", b.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	if b.Format != "" && !slices.Contains(validFormats, b.Format) {
		addError(vr, "build.format",
			fmt.Sprintf("unrecognized format %q; must be one of: %s", b.Format, strings.Join(validFormats, ", ")))
	}

	if b.Concurrency < 0 {
		addError(vr, "build.concurrency", "must not be negative")
	}

	for i, name := range b.Filter {
		if strings.TrimSpace(name) == "" {
			addError(vr, fmt.Sprintf("build.filter[%d]", i), "must not be an empty string")
		}
	}

	if b.Config != "" {
		if !strings.EqualFold(filepath.Ext(b.Config), ".json") {
			addError(vr, "build.config", fmt.Sprintf("%q is not a .json file", b.Config))
		} else if _, err := os.Stat(b.Config); err != nil {
			addWarning(vr, "build.config", fmt.Sprintf("file %q does not exist", b.Config))
		}
	}

	if b.EnvFile != "" {
		if _, err := os.Stat(b.EnvFile); err != nil {
			addWarning(vr, "build.env_file", fmt.Sprintf("file %q does not exist", b.EnvFile))
		}
	}
}

// validateEnvironment accepts only boolean and string flag values.
func validateEnvironment(vr *ValidationResult, env map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(env)) {
		switch env[key].(type) {
		case bool, string:
		default:
			addError(vr, "environment."+key,
				fmt.Sprintf("unsupported value type %T; must be a boolean or a string", env[key]))
		}
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any settings field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
