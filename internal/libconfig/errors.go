package libconfig

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by ConfigError. Match them with errors.Is.
var (
	// ErrExtendsNotFound is returned when an extends reference names a project
	// that does not exist in the document.
	ErrExtendsNotFound = errors.New("extends target not found")

	// ErrExtendsCycle is returned when an extends chain revisits a project,
	// including a project that extends itself.
	ErrExtendsCycle = errors.New("extends cycle detected")

	// ErrExtendsTooDeep is returned when an extends chain is longer than
	// MaxExtendsDepth.
	ErrExtendsTooDeep = errors.New("extends chain too deep")

	// ErrDuplicateName is returned when two projects share a name.
	ErrDuplicateName = errors.New("duplicate project name")
)

// ConfigError reports a configuration that is structurally or referentially
// invalid: a missing extends target, a cycle, an unresolvable compiler
// configuration, an invalid target string or an absent required field.
type ConfigError struct {
	Msg string
	Err error
}

// NewConfigError builds a ConfigError with a formatted message and an
// optional wrapped cause.
func NewConfigError(cause error, format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InvalidConfigError reports a well-formed configuration that violates a
// build-time constraint: schema violations, no projects, an output path that
// escapes the workspace root.
type InvalidConfigError struct {
	Msg string
	Err error
}

// NewInvalidConfigError builds an InvalidConfigError with a formatted message
// and an optional wrapped cause.
func NewInvalidConfigError(cause error, format string, args ...any) *InvalidConfigError {
	return &InvalidConfigError{Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *InvalidConfigError) Error() string {
	return e.Msg
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Err
}
