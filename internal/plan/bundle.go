package plan

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/pathutil"
	"github.com/Aakash-Pandya/lib-tools/internal/tsconfig"
)

// BundleEntry is one planned bundler pass.
type BundleEntry struct {
	Index                   int    `json:"index" yaml:"index"`
	LibraryTarget           string `json:"libraryTarget" yaml:"libraryTarget"`
	EntryRoot               string `json:"entryRoot" yaml:"entryRoot"`
	TranspilationEntryIndex *int   `json:"transpilationEntryIndex,omitempty" yaml:"transpilationEntryIndex,omitempty"`
	EntryFile               string `json:"entryFile" yaml:"entryFile"`
	// TsConfigPath is set when the entry file is a TypeScript source.
	TsConfigPath                string                     `json:"tsConfigPath,omitempty" yaml:"tsConfigPath,omitempty"`
	Externals                   []string                   `json:"externals,omitempty" yaml:"externals,omitempty"`
	DependenciesAsExternals     bool                       `json:"dependenciesAsExternals" yaml:"dependenciesAsExternals"`
	PeerDependenciesAsExternals bool                       `json:"peerDependenciesAsExternals" yaml:"peerDependenciesAsExternals"`
	IncludeCommonJS             bool                       `json:"includeCommonJs" yaml:"includeCommonJs"`
	CommonJSOptions             *libconfig.CommonJSOptions `json:"commonJsOptions,omitempty" yaml:"commonJsOptions,omitempty"`
	OutputFilePath              string                     `json:"outputFilePath" yaml:"outputFilePath"`
	Minify                      bool                       `json:"minify" yaml:"minify"`
	SourceMap                   bool                       `json:"sourceMap" yaml:"sourceMap"`
	LibraryName                 string                     `json:"libraryName" yaml:"libraryName"`
	// Banner is literal banner text; BannerFile a file holding it. At most one is set.
	Banner     string `json:"banner,omitempty" yaml:"banner,omitempty"`
	BannerFile string `json:"bannerFile,omitempty" yaml:"bannerFile,omitempty"`
}

// bundleEntries returns the configured entries and their shared defaults.
// scriptBundle: true plans a single umd bundle.
func bundleEntries(r *Resolved) ([]libconfig.ScriptBundleEntry, *libconfig.ScriptBundleOptions) {
	sb := r.Config.ScriptBundle
	if sb == nil || !sb.Enabled {
		return nil, nil
	}
	opts := sb.Options
	if opts == nil {
		opts = &libconfig.ScriptBundleOptions{}
	}
	entries := opts.Entries
	if len(entries) == 0 {
		entries = []libconfig.ScriptBundleEntry{{LibraryTarget: libconfig.LibraryTargetUMD}}
	}
	return entries, opts
}

// planBundles plans every bundle entry against the already planned
// transpilations.
func planBundles(r *Resolved, transpilations []TranspilationEntry) ([]BundleEntry, error) {
	entries, opts := bundleEntries(r)
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]BundleEntry, 0, len(entries))
	for i, e := range entries {
		var prev *BundleEntry
		if i > 0 {
			prev = &out[i-1]
		}
		be, err := planBundle(r, i, e, opts, transpilations, prev)
		if err != nil {
			return nil, err
		}
		out = append(out, be)
	}
	return out, nil
}

func planBundle(r *Resolved, i int, e libconfig.ScriptBundleEntry, opts *libconfig.ScriptBundleOptions,
	transpilations []TranspilationEntry, prev *BundleEntry) (BundleEntry, error) {
	be := BundleEntry{
		Index:         i,
		LibraryTarget: e.LibraryTarget,
		EntryRoot:     e.EntryRoot,
	}
	if be.LibraryTarget == "" {
		be.LibraryTarget = libconfig.LibraryTargetUMD
	}

	entry := e.Entry
	if entry == "" {
		entry = opts.Entry
	}
	if be.EntryRoot == "" {
		if len(transpilations) > 0 && entry == "" {
			be.EntryRoot = libconfig.EntryRootTranspilationOutput
		} else {
			be.EntryRoot = libconfig.EntryRootProject
		}
	}

	switch be.EntryRoot {
	case libconfig.EntryRootProject:
		if entry == "" {
			return be, libconfig.NewConfigError(nil,
				"The 'projects[%s].scriptBundle.entries[%d].entry' value is required.", r.label(), i)
		}
		be.EntryFile = pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(entry))

	case libconfig.EntryRootTranspilationOutput:
		idx := defaultTranspilationIndex(be.LibraryTarget, transpilations)
		if e.TranspilationEntryIndex != nil {
			idx = *e.TranspilationEntryIndex
		}
		if idx < 0 || idx >= len(transpilations) {
			return be, libconfig.NewConfigError(ErrTranspilationIndex,
				"No transpilation entry at index %d, config location 'projects[%s].scriptBundle.entries[%d].transpilationEntryIndex'.",
				idx, r.label(), i)
		}
		be.TranspilationEntryIndex = &idx
		t := transpilations[idx]
		switch {
		case entry != "":
			be.EntryFile = pathutil.Resolve(t.OutDir, filepath.FromSlash(entry))
		case t.DetectedEntryName != "":
			be.EntryFile = filepath.Join(t.OutDir, t.DetectedEntryName+".js")
		default:
			return be, libconfig.NewConfigError(nil,
				"Could not detect the bundle entry file, config location 'projects[%s].scriptBundle.entries[%d].entry'.", r.label(), i)
		}

	case libconfig.EntryRootPrevBundleOutput:
		if prev == nil {
			return be, libconfig.NewConfigError(nil,
				"No previous bundle entry to use as input, config location 'projects[%s].scriptBundle.entries[%d].entryRoot'.", r.label(), i)
		}
		be.EntryFile = prev.OutputFilePath
		if entry != "" {
			be.EntryFile = pathutil.Resolve(filepath.Dir(prev.OutputFilePath), filepath.FromSlash(entry))
		}

	default:
		return be, libconfig.NewConfigError(nil,
			"Invalid entryRoot '%s', config location 'projects[%s].scriptBundle.entries[%d].entryRoot'.", be.EntryRoot, r.label(), i)
	}

	if strings.EqualFold(filepath.Ext(be.EntryFile), ".ts") {
		p, err := bundleTsConfig(r, i, e, transpilations)
		if err != nil {
			return be, err
		}
		be.TsConfigPath = p
	}

	be.DependenciesAsExternals = firstBool(e.DependenciesAsExternals, opts.DependenciesAsExternals, true)
	be.PeerDependenciesAsExternals = firstBool(e.PeerDependenciesAsExternals, opts.PeerDependenciesAsExternals, true)
	be.Externals = bundleExternals(r, e, opts, be.DependenciesAsExternals, be.PeerDependenciesAsExternals)

	cjs := e.IncludeCommonJS
	if cjs == nil {
		cjs = opts.IncludeCommonJS
	}
	if cjs != nil {
		be.IncludeCommonJS = cjs.Enabled
		be.CommonJSOptions = cjs.Options
	}

	be.OutputFilePath = bundleOutputPath(r, be.LibraryTarget, e.OutputFilePath)
	be.Minify = libconfig.BoolValue(e.Minify, be.LibraryTarget == libconfig.LibraryTargetUMD)
	be.SourceMap = libconfig.BoolValue(opts.SourceMap, true)
	be.LibraryName = opts.LibraryName
	if be.LibraryName == "" {
		be.LibraryName = camelCase(r.PackageNameWithoutScope)
	}
	if opts.Banner != "" {
		if p := pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(opts.Banner)); isFile(p) {
			be.BannerFile = p
		} else {
			be.Banner = opts.Banner
		}
	}
	return be, nil
}

// defaultTranspilationIndex prefers the first ES5 output for umd and cjs
// bundles and the first ES2015 output for esm bundles.
func defaultTranspilationIndex(target string, transpilations []TranspilationEntry) int {
	var want tsconfig.ScriptTarget
	switch target {
	case libconfig.LibraryTargetUMD, libconfig.LibraryTargetCommonJS:
		want = tsconfig.TargetES5
	case libconfig.LibraryTargetESM:
		want = tsconfig.TargetES2015
	default:
		return 0
	}
	for i, t := range transpilations {
		if t.ScriptTarget == want {
			return i
		}
	}
	return 0
}

// bundleTsConfig picks the compiler configuration for a TypeScript entry:
// the entry's own, then the first transpilation's, then discovery.
func bundleTsConfig(r *Resolved, i int, e libconfig.ScriptBundleEntry, transpilations []TranspilationEntry) (string, error) {
	switch {
	case e.TsConfig != "":
		return pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(e.TsConfig)), nil
	case len(transpilations) > 0:
		return transpilations[0].TsConfigPath, nil
	}
	if p := pathutil.FindUp(TsConfigCandidates, r.ProjectRoot, r.WorkspaceRoot); p != "" {
		return p, nil
	}
	return "", libconfig.NewConfigError(ErrTsConfigRequired,
		"The 'projects[%s].scriptBundle.entries[%d].tsConfig' value is required.", r.label(), i)
}

// bundleExternals lists the explicit externals followed by dependency and
// peer dependency names, without duplicates.
func bundleExternals(r *Resolved, e libconfig.ScriptBundleEntry, opts *libconfig.ScriptBundleOptions, deps, peers bool) []string {
	explicit := e.Externals
	if explicit == nil {
		explicit = opts.Externals
	}
	names := explicit.Names()
	if deps {
		names = append(names, r.Package.DependencyNames()...)
	}
	if peers {
		names = append(names, r.Package.PeerDependencyNames()...)
	}

	var out []string
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// bundleOutputPath resolves an explicit output against the output path. An
// explicit value ending in "/" or without a .js extension names a directory.
func bundleOutputPath(r *Resolved, target, explicit string) string {
	name := strings.ReplaceAll(r.PackageNameWithoutScope, "/", "-") + "." + target + ".js"
	if explicit == "" {
		return filepath.Join(r.OutputPath, "bundles", name)
	}
	p := pathutil.Resolve(r.OutputPath, filepath.FromSlash(explicit))
	if strings.HasSuffix(explicit, "/") || !strings.EqualFold(filepath.Ext(p), ".js") {
		return filepath.Join(p, name)
	}
	return p
}

// camelCase turns "core-utils/testing" into "coreUtilsTesting".
func camelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == '/' || r == '@'
	})
	var b strings.Builder
	for i, p := range parts {
		if i == 0 {
			b.WriteString(p)
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
