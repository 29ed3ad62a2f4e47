package plan

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/pathutil"
)

// CleanPlan lists what the clean step removes before the build and after
// output has been emitted.
type CleanPlan struct {
	// OutDir is the directory cleanOutDir empties.
	OutDir                    string          `json:"outDir" yaml:"outDir"`
	BeforeBuild               BeforeBuildPlan `json:"beforeBuild" yaml:"beforeBuild"`
	AfterEmit                 AfterEmitPlan   `json:"afterEmit" yaml:"afterEmit"`
	AllowOutsideOutDir        bool            `json:"allowOutsideOutDir" yaml:"allowOutsideOutDir"`
	AllowOutsideWorkspaceRoot bool            `json:"allowOutsideWorkspaceRoot" yaml:"allowOutsideWorkspaceRoot"`
}

// BeforeBuildPlan is the before-build half of a CleanPlan.
type BeforeBuildPlan struct {
	CleanOutDir bool     `json:"cleanOutDir" yaml:"cleanOutDir"`
	CleanCache  bool     `json:"cleanCache" yaml:"cleanCache"`
	Paths       []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	Excludes    []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// AfterEmitPlan is the after-emit half of a CleanPlan.
type AfterEmitPlan struct {
	Paths    []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// planClean returns nil when cleaning is disabled with clean: false.
func planClean(r *Resolved) (*CleanPlan, error) {
	setting := r.Config.Clean
	if setting != nil && !setting.Enabled {
		return nil, nil
	}
	opts := libconfig.CleanOptions{}
	if setting != nil && setting.Options != nil {
		opts = *setting.Options
	}

	cp := &CleanPlan{
		OutDir:                    r.OutputPath,
		AllowOutsideOutDir:        libconfig.BoolValue(opts.AllowOutsideOutDir, false),
		AllowOutsideWorkspaceRoot: libconfig.BoolValue(opts.AllowOutsideWorkspaceRoot, false),
	}
	if r.NestedPackage {
		cp.OutDir = filepath.Join(r.OutputPath, filepath.FromSlash(r.NestedSuffix()))
	}

	before := libconfig.BeforeBuildCleanOptions{}
	if opts.BeforeBuild != nil {
		before = *opts.BeforeBuild
	}
	// A nested package shares its parent's output directory, so an explicit
	// cleanOutDir is turned off rather than wiping the parent's output.
	if r.NestedPackage && before.CleanOutDir != nil && *before.CleanOutDir {
		cp.BeforeBuild.CleanOutDir = false
	} else {
		cp.BeforeBuild.CleanOutDir = libconfig.BoolValue(before.CleanOutDir, true)
	}
	cp.BeforeBuild.CleanCache = libconfig.BoolValue(before.CleanCache, true)

	var err error
	cp.BeforeBuild.Excludes = resolvePatterns(r.OutputPath, before.Excludes)
	if cp.BeforeBuild.Paths, err = cp.resolveCleanPaths(r, "beforeBuild", before.Paths, cp.BeforeBuild.Excludes); err != nil {
		return nil, err
	}

	if opts.AfterEmit != nil {
		cp.AfterEmit.Excludes = resolvePatterns(r.OutputPath, opts.AfterEmit.Excludes)
		if cp.AfterEmit.Paths, err = cp.resolveCleanPaths(r, "afterEmit", opts.AfterEmit.Paths, cp.AfterEmit.Excludes); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// resolveCleanPaths resolves paths against the output path, enforces the
// containment rules and drops literal paths matched by an exclude pattern.
func (cp *CleanPlan) resolveCleanPaths(r *Resolved, phase string, paths, excludes []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		abs := pathutil.Resolve(r.OutputPath, filepath.FromSlash(p))
		base := abs
		if hasMeta(p) {
			b, _ := doublestar.SplitPattern(filepath.ToSlash(abs))
			base = filepath.FromSlash(b)
		}

		if !cp.AllowOutsideWorkspaceRoot && !pathutil.IsInFolder(r.WorkspaceRoot, base) {
			return nil, libconfig.NewInvalidConfigError(nil,
				"Cleaning outside of the workspace root directory is disabled, config location 'projects[%s].clean.%s.paths'. "+
					"Set 'allowOutsideWorkspaceRoot' to allow it.", r.label(), phase)
		}
		if !cp.AllowOutsideOutDir && !pathutil.IsSamePaths(r.OutputPath, base) && !pathutil.IsInFolder(r.OutputPath, base) {
			return nil, libconfig.NewInvalidConfigError(nil,
				"Cleaning outside of the output directory is disabled, config location 'projects[%s].clean.%s.paths'. "+
					"Set 'allowOutsideOutDir' to allow it.", r.label(), phase)
		}

		if !hasMeta(p) && excluded(abs, excludes) {
			continue
		}
		out = append(out, abs)
	}
	return out, nil
}

// resolvePatterns roots each pattern at base and returns it in slash form.
func resolvePatterns(base string, patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, filepath.ToSlash(pathutil.Resolve(base, filepath.FromSlash(p))))
	}
	return out
}

func excluded(abs string, patterns []string) bool {
	name := filepath.ToSlash(abs)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
