package plan

import (
	"path/filepath"
	"strings"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/pathutil"
)

// StylePlan is one stylesheet compilation. Vendor prefix and minifier option
// objects are passed through to the external tools untouched.
type StylePlan struct {
	Input                string         `json:"input" yaml:"input"`
	Output               string         `json:"output" yaml:"output"`
	SourceMap            bool           `json:"sourceMap" yaml:"sourceMap"`
	SourceMapContents    bool           `json:"sourceMapContents" yaml:"sourceMapContents"`
	VendorPrefixes       bool           `json:"vendorPrefixes" yaml:"vendorPrefixes"`
	VendorPrefixOptions  map[string]any `json:"vendorPrefixOptions,omitempty" yaml:"vendorPrefixOptions,omitempty"`
	Minify               bool           `json:"minify" yaml:"minify"`
	MinifyOptions        map[string]any `json:"minifyOptions,omitempty" yaml:"minifyOptions,omitempty"`
	IncludePaths         []string       `json:"includePaths,omitempty" yaml:"includePaths,omitempty"`
	AddToPackageManifest bool           `json:"addToPackageJson" yaml:"addToPackageJson"`
}

func planStyles(r *Resolved) []StylePlan {
	block := r.Config.Style
	if block == nil || len(block.Entries) == 0 {
		return nil
	}

	out := make([]StylePlan, 0, len(block.Entries))
	for _, e := range block.Entries {
		sp := StylePlan{
			Input:                pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(e.Input)),
			SourceMap:            firstBool(e.SourceMap, block.SourceMap, true),
			SourceMapContents:    firstBool(e.SourceMapContents, block.SourceMapContents, true),
			AddToPackageManifest: libconfig.BoolValue(block.AddToPackageJSON, true),
		}
		sp.Output = styleOutput(r.OutputPath, sp.Input, e.Output)
		sp.VendorPrefixes, sp.VendorPrefixOptions = toggleValue(e.VendorPrefixes, block.VendorPrefixes)
		sp.Minify, sp.MinifyOptions = toggleValue(e.Minify, block.Minify)

		includes := e.IncludePaths
		if includes == nil {
			includes = block.IncludePaths
		}
		for _, inc := range includes {
			sp.IncludePaths = append(sp.IncludePaths, pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(inc)))
		}
		out = append(out, sp)
	}
	return out
}

// styleOutput resolves an entry's output against the output path. A missing
// output, or one naming a directory, gets the input's base name with .css.
func styleOutput(outputPath, input, output string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".css"
	if output == "" {
		return filepath.Join(outputPath, name)
	}
	resolved := pathutil.Resolve(outputPath, filepath.FromSlash(output))
	if strings.HasSuffix(output, "/") || filepath.Ext(resolved) == "" {
		return filepath.Join(resolved, name)
	}
	return resolved
}

func firstBool(entry, block *bool, def bool) bool {
	if entry != nil {
		return *entry
	}
	return libconfig.BoolValue(block, def)
}

// toggleValue picks the entry toggle over the block toggle, defaulting to
// enabled without options.
func toggleValue(entry, block *libconfig.Toggle[map[string]any]) (bool, map[string]any) {
	t := entry
	if t == nil {
		t = block
	}
	if t == nil {
		return true, nil
	}
	if t.Options != nil {
		return t.Enabled, *t.Options
	}
	return t.Enabled, nil
}
