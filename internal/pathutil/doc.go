// Package pathutil holds the path algebra shared by the config loader and the
// build planner: normalization, containment tests, relative-path formatting
// for manifest fields, and the bounded upward file search used for
// compiler-config and package-manifest discovery.
//
// Everything here is pure except Exists and FindUp, which only stat files.
package pathutil
