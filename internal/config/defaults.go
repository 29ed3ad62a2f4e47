package config

import "runtime"

// NewDefaults returns a Config populated with all default values.
func NewDefaults() *Config {
	return &Config{
		Build: BuildConfig{
			LogLevel:    "info",
			Concurrency: runtime.NumCPU(),
			Format:      "text",
		},
		Environment: map[string]any{},
	}
}
