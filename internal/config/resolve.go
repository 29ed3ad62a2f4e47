package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/logging"
)

// ConfigSource identifies where a settings value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the libtools.toml settings file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
	// SourceEnvFile indicates the value came from the dotenv file named by
	// build.env_file.
	SourceEnvFile ConfigSource = "env-file"
)

// ResolvedConfig holds the fully-resolved settings with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "build.log_level"
	Path    string                  // path to the settings file used (empty if none)
}

// CLIOverrides captures flag values that can override settings.
// Nil values mean "not set" (do not override). A *string pointing to "" means
// "override to empty string".
type CLIOverrides struct {
	Config      *string
	LogLevel    *string
	Concurrency *int
	Filter      []string
	EnvFile     *string
	Prod        *bool
	Format      *string
	// Environment entries are merged key by key over the lower layers.
	Environment map[string]any
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Resolve merges settings from all sources in priority order:
// CLI flags > environment variables > settings file > defaults.
//
// fileConfig is nil when no libtools.toml was found. A nil envFn sees no
// variables and nil overrides change nothing.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{Environment: map[string]any{}},
		Sources: make(map[string]ConfigSource),
	}
	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	resolveBuildFromDefaults(rc, defaults)
	mergeEnvironment(rc, defaults.Environment, SourceDefault)

	if fileConfig != nil {
		resolveBuildFromFile(rc, fileConfig)
		mergeEnvironment(rc, fileConfig.Environment, SourceFile)
	}

	resolveFromEnv(rc, envFn)
	resolveFromCLI(rc, overrides)

	return rc
}

// BuildEnvironment returns the normalized build flags. build.prod switches
// the mode explicitly only when a file, variable or flag set it.
func (rc *ResolvedConfig) BuildEnvironment() libconfig.Environment {
	var prod *bool
	if rc.Sources["build.prod"] != SourceDefault {
		p := rc.Config.Build.Prod
		prod = &p
	}
	return libconfig.NormalizeEnvironment(rc.Config.Environment, prod)
}

// LoadEnvFile merges the dotenv file named by build.env_file into the
// environment table. Entries set by CLI flags are kept.
func (rc *ResolvedConfig) LoadEnvFile() error {
	path := rc.Config.Build.EnvFile
	if path == "" {
		return nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}
	for k, v := range vars {
		key := "environment." + k
		if rc.Sources[key] == SourceCLI {
			continue
		}
		rc.Config.Environment[k] = v
		rc.Sources[key] = SourceEnvFile
	}
	return nil
}

// Keys returns the dotted keys with a recorded source, sorted.
func (rc *ResolvedConfig) Keys() []string {
	return slices.Sorted(maps.Keys(rc.Sources))
}

// --- Layer 1: Defaults ---

func resolveBuildFromDefaults(rc *ResolvedConfig, defaults *Config) {
	b := &rc.Config.Build
	d := &defaults.Build

	setString(&b.Config, d.Config, "build.config", SourceDefault, rc.Sources)
	setString(&b.LogLevel, d.LogLevel, "build.log_level", SourceDefault, rc.Sources)
	setString(&b.EnvFile, d.EnvFile, "build.env_file", SourceDefault, rc.Sources)
	setString(&b.Format, d.Format, "build.format", SourceDefault, rc.Sources)

	b.Concurrency = d.Concurrency
	rc.Sources["build.concurrency"] = SourceDefault
	b.Prod = d.Prod
	rc.Sources["build.prod"] = SourceDefault
	b.Filter = slices.Clone(d.Filter)
	rc.Sources["build.filter"] = SourceDefault
}

// --- Layer 2: File ---

func resolveBuildFromFile(rc *ResolvedConfig, file *Config) {
	b := &rc.Config.Build
	f := &file.Build

	mergeString(&b.Config, f.Config, "build.config", SourceFile, rc.Sources)
	mergeString(&b.LogLevel, f.LogLevel, "build.log_level", SourceFile, rc.Sources)
	mergeString(&b.EnvFile, f.EnvFile, "build.env_file", SourceFile, rc.Sources)
	mergeString(&b.Format, f.Format, "build.format", SourceFile, rc.Sources)

	if f.Concurrency != 0 {
		b.Concurrency = f.Concurrency
		rc.Sources["build.concurrency"] = SourceFile
	}
	if f.Prod {
		b.Prod = true
		rc.Sources["build.prod"] = SourceFile
	}
	if len(f.Filter) > 0 {
		b.Filter = slices.Clone(f.Filter)
		rc.Sources["build.filter"] = SourceFile
	}
}

func mergeEnvironment(rc *ResolvedConfig, env map[string]any, source ConfigSource) {
	for k, v := range env {
		rc.Config.Environment[k] = v
		rc.Sources["environment."+k] = source
	}
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	LIBTOOLS_CONFIG       -> build.config
//	LIBTOOLS_LOG_LEVEL    -> build.log_level
//	LIBTOOLS_CONCURRENCY  -> build.concurrency
//	LIBTOOLS_FILTER       -> build.filter (comma-separated)
//	LIBTOOLS_ENV_FILE     -> build.env_file
//	LIBTOOLS_PROD         -> build.prod
//	LIBTOOLS_FORMAT       -> build.format
//	LIBTOOLS_ENV          -> environment.* ("prod,ci=false" style)
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	b := &rc.Config.Build
	logger := logging.New("config")

	if val, ok := envFn("LIBTOOLS_CONFIG"); ok {
		b.Config = val
		rc.Sources["build.config"] = SourceEnv
	}
	if val, ok := envFn("LIBTOOLS_LOG_LEVEL"); ok {
		b.LogLevel = val
		rc.Sources["build.log_level"] = SourceEnv
	}
	if val, ok := envFn("LIBTOOLS_CONCURRENCY"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			logger.Warn("ignoring LIBTOOLS_CONCURRENCY", "value", val, "error", err)
		} else {
			b.Concurrency = n
			rc.Sources["build.concurrency"] = SourceEnv
		}
	}
	if val, ok := envFn("LIBTOOLS_FILTER"); ok {
		b.Filter = splitList(val)
		rc.Sources["build.filter"] = SourceEnv
	}
	if val, ok := envFn("LIBTOOLS_ENV_FILE"); ok {
		b.EnvFile = val
		rc.Sources["build.env_file"] = SourceEnv
	}
	if val, ok := envFn("LIBTOOLS_PROD"); ok {
		p, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			logger.Warn("ignoring LIBTOOLS_PROD", "value", val, "error", err)
		} else {
			b.Prod = p
			rc.Sources["build.prod"] = SourceEnv
		}
	}
	if val, ok := envFn("LIBTOOLS_FORMAT"); ok {
		b.Format = val
		rc.Sources["build.format"] = SourceEnv
	}
	if val, ok := envFn("LIBTOOLS_ENV"); ok {
		mergeEnvironment(rc, libconfig.ParseEnvironmentString(val), SourceEnv)
	}
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	b := &rc.Config.Build

	if overrides.Config != nil {
		b.Config = *overrides.Config
		rc.Sources["build.config"] = SourceCLI
	}
	if overrides.LogLevel != nil {
		b.LogLevel = *overrides.LogLevel
		rc.Sources["build.log_level"] = SourceCLI
	}
	if overrides.Concurrency != nil {
		b.Concurrency = *overrides.Concurrency
		rc.Sources["build.concurrency"] = SourceCLI
	}
	if overrides.Filter != nil {
		b.Filter = slices.Clone(overrides.Filter)
		rc.Sources["build.filter"] = SourceCLI
	}
	if overrides.EnvFile != nil {
		b.EnvFile = *overrides.EnvFile
		rc.Sources["build.env_file"] = SourceCLI
	}
	if overrides.Prod != nil {
		b.Prod = *overrides.Prod
		rc.Sources["build.prod"] = SourceCLI
	}
	if overrides.Format != nil {
		b.Format = *overrides.Format
		rc.Sources["build.format"] = SourceCLI
	}
	mergeEnvironment(rc, overrides.Environment, SourceCLI)
}

// --- Helpers ---

// setString unconditionally sets the target to the given value and records the source.
func setString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeString overwrites the target only if value is non-empty. An empty
// string in the file means "not set in file".
func mergeString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	if value != "" {
		*target = value
		sources[path] = source
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
