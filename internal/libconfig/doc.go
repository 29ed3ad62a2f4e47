// Package libconfig models the libconfig.json workspace document. It parses
// and schema-validates the document, applies project inheritance and
// environment overrides, and defines the error types the build planner
// reports.
package libconfig
