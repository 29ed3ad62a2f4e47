// Package config loads the lib-tools settings file (libtools.toml), layers it
// with environment variables and command-line flags, validates the result
// and renders the starter workspace templates used by "lib-tools init".
package config
