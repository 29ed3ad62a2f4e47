// Package cli implements the lib-tools command tree: plan, validate, init,
// config, version and completion.
package cli
