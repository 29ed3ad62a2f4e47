package config

// Config is the top-level settings structure mapping to libtools.toml.
type Config struct {
	Build       BuildConfig    `toml:"build"`
	Environment map[string]any `toml:"environment"`
}

// BuildConfig maps to the [build] section in libtools.toml.
type BuildConfig struct {
	// Config is the libconfig.json document to plan. Relative paths resolve
	// against the directory holding libtools.toml.
	Config      string   `toml:"config"`
	LogLevel    string   `toml:"log_level"`
	Concurrency int      `toml:"concurrency"`
	Filter      []string `toml:"filter"`
	EnvFile     string   `toml:"env_file"`
	Prod        bool     `toml:"prod"`
	Format      string   `toml:"format"`
}
