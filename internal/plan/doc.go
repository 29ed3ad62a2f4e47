// Package plan derives build plans from a loaded libconfig.json: resolved
// locations, clean and copy operations, style compilations, transpilation and
// bundle passes, and the package manifest entry points they produce.
//
// Planning never runs a compiler or bundler. The only I/O is reading package
// and compiler configuration files and checking whether candidate files exist.
package plan
