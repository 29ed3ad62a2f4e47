package libconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError marks an issue that makes the document unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning marks an issue that does not block planning.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue is a single semantic finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // e.g. "projects[core].extends"
	Message  string
	// Invalid marks issues that map to InvalidConfigError rather than ConfigError.
	Invalid bool
	cause   error
}

// ValidationResult collects every finding so authors can fix them in one pass.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors reports whether any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// Err folds the error-severity issues into a single typed error, or nil. The
// result is an InvalidConfigError if any issue is a build-time constraint
// violation, otherwise a ConfigError.
func (vr *ValidationResult) Err() error {
	errs := vr.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(errs))
	invalid := false
	var causes []error
	for _, issue := range errs {
		if issue.Field != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s", issue.Field, issue.Message))
		} else {
			lines = append(lines, issue.Message)
		}
		if issue.Invalid {
			invalid = true
		}
		if issue.cause != nil {
			causes = append(causes, issue.cause)
		}
	}
	msg := strings.Join(lines, "\n")
	cause := errors.Join(causes...)
	if invalid {
		return NewInvalidConfigError(cause, "%s", msg)
	}
	return NewConfigError(cause, "%s", msg)
}

// Validate performs the semantic checks the schema cannot express: at least
// one project, unique names and well-formed glob patterns in copy and clean
// blocks are errors; unnamed projects and dangling extends references are
// warnings.
func Validate(cfg *LibConfig) *ValidationResult {
	vr := &ValidationResult{}
	if cfg == nil || len(cfg.Projects) == 0 {
		vr.Issues = append(vr.Issues, ValidationIssue{
			Severity: SeverityError,
			Message:  "No project is available to build.",
			Invalid:  true,
		})
		return vr
	}

	names := make(map[string]int, len(cfg.Projects))
	for i, p := range cfg.Projects {
		if p.Name == "" {
			continue
		}
		if first, ok := names[p.Name]; ok {
			addError(vr, fmt.Sprintf("projects[%d].name", i),
				fmt.Sprintf("duplicate project name %q (first defined at projects[%d])", p.Name, first), ErrDuplicateName)
			continue
		}
		names[p.Name] = i
	}

	for i, p := range cfg.Projects {
		label := projectLabel(p, i)
		if p.Name == "" {
			addWarning(vr, label, "project has no name; it cannot be extended or selected with --project")
		}
		// Broken extends references fail only the affected project at plan
		// time, so they are reported here as warnings.
		if p.Extends != "" {
			if p.Extends == p.Name {
				addWarning(vr, label+".extends", fmt.Sprintf("project %q extends itself", p.Name))
			} else if _, ok := names[p.Extends]; !ok {
				addWarning(vr, label+".extends", fmt.Sprintf("no project named %q to extend", p.Extends))
			}
		}
		validatePatterns(vr, label, p.BuildAction)
		for _, ov := range p.EnvOverrides {
			validatePatterns(vr, label+".envOverrides."+ov.Name, ov.Action)
		}
	}

	return vr
}

func validatePatterns(vr *ValidationResult, label string, a BuildAction) {
	if a.Copy != nil {
		for i, asset := range a.Copy.Assets {
			checkPattern(vr, fmt.Sprintf("%s.copy[%d].from", label, i), asset.From)
			for j, ex := range asset.Exclude {
				checkPattern(vr, fmt.Sprintf("%s.copy[%d].exclude[%d]", label, i, j), ex)
			}
		}
	}
	if a.Clean != nil && a.Clean.Options != nil {
		opts := a.Clean.Options
		if opts.BeforeBuild != nil {
			checkPatterns(vr, label+".clean.beforeBuild.paths", opts.BeforeBuild.Paths)
			checkPatterns(vr, label+".clean.beforeBuild.excludes", opts.BeforeBuild.Excludes)
		}
		if opts.AfterEmit != nil {
			checkPatterns(vr, label+".clean.afterEmit.paths", opts.AfterEmit.Paths)
			checkPatterns(vr, label+".clean.afterEmit.excludes", opts.AfterEmit.Excludes)
		}
	}
}

func checkPatterns(vr *ValidationResult, field string, patterns []string) {
	for i, p := range patterns {
		checkPattern(vr, fmt.Sprintf("%s[%d]", field, i), p)
	}
}

func checkPattern(vr *ValidationResult, field, pattern string) {
	if !doublestar.ValidatePattern(pattern) {
		addError(vr, field, fmt.Sprintf("invalid glob pattern %q", pattern), doublestar.ErrBadPattern)
	}
}

// projectLabel names a project in messages: by name when it has one,
// otherwise by index.
func projectLabel(p ProjectConfig, index int) string {
	if p.Name != "" {
		return fmt.Sprintf("projects[%s]", p.Name)
	}
	return fmt.Sprintf("projects[%d]", index)
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string, cause error) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
		cause:    cause,
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
