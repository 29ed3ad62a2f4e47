package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the lib-tools settings file.
const ConfigFileName = "libtools.toml"

// FindConfigFile walks up from the given directory to find libtools.toml.
// Returns the absolute path to the settings file, or an empty string if not
// found. Stops at the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadFromFile parses the TOML file at the given path and returns the
// settings and TOML metadata. The metadata can be used to detect unknown keys
// via MetaData.Undecoded(). A relative build.config is made absolute against
// the settings file's directory.
func LoadFromFile(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("loading settings %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if cfg.Build.Config != "" && !filepath.IsAbs(cfg.Build.Config) {
		cfg.Build.Config = filepath.Join(dir, cfg.Build.Config)
	}
	if cfg.Build.EnvFile != "" && !filepath.IsAbs(cfg.Build.EnvFile) {
		cfg.Build.EnvFile = filepath.Join(dir, cfg.Build.EnvFile)
	}
	return &cfg, md, nil
}
