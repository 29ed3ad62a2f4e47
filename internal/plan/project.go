package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/pathutil"
)

// BuildOptions are the global inputs of one planning run.
type BuildOptions struct {
	// Environment holds the normalized build flags used to pick envOverrides.
	Environment libconfig.Environment
	// LogLevel is "debug", "info", "warn" or "error". Empty keeps the current level.
	LogLevel string
	// Filter restricts planning to the named projects. Empty plans everything.
	Filter []string
	// Concurrency bounds how many projects are planned at once. Values below 1
	// use the number of CPUs.
	Concurrency int
}

// selects reports whether the filter lets name through.
func (o BuildOptions) selects(name string) bool {
	return len(o.Filter) == 0 || (name != "" && slices.Contains(o.Filter, name))
}

// Resolved is a project config after extends and environment overrides have
// been applied, plus every derived location field. It is built once per
// project and not modified afterwards.
type Resolved struct {
	Config libconfig.ProjectConfig `json:"-" yaml:"-"`

	WorkspaceRoot           string `json:"workspaceRoot" yaml:"workspaceRoot"`
	ProjectRoot             string `json:"projectRoot" yaml:"projectRoot"`
	OutputPath              string `json:"outputPath" yaml:"outputPath"`
	PackageName             string `json:"packageName" yaml:"packageName"`
	PackageScope            string `json:"packageScope,omitempty" yaml:"packageScope,omitempty"`
	PackageNameWithoutScope string `json:"packageNameWithoutScope" yaml:"packageNameWithoutScope"`
	NestedPackage           bool   `json:"nestedPackage" yaml:"nestedPackage"`
	PackageJSONPath         string `json:"packageJsonPath,omitempty" yaml:"packageJsonPath,omitempty"`
	PackageJSONOutDir       string `json:"packageJsonOutDir" yaml:"packageJsonOutDir"`

	Package *PackageJSON `json:"-" yaml:"-"`
}

// NestedSuffix returns the part of a nested package name below its root
// package ("testing" for "@scope/core/testing"), or "".
func (r *Resolved) NestedSuffix() string {
	if !r.NestedPackage {
		return ""
	}
	_, suffix, _ := strings.Cut(r.PackageNameWithoutScope, "/")
	return suffix
}

// LastNameSegment returns the trailing path segment of the unscoped name.
func (r *Resolved) LastNameSegment() string {
	n := r.PackageNameWithoutScope
	return n[strings.LastIndex(n, "/")+1:]
}

// label names the project in error messages.
func (r *Resolved) label() string {
	if r.Config.Name != "" {
		return r.Config.Name
	}
	return r.PackageName
}

// EntryPoints are the package manifest fields contributed by transpilations.
// Paths are relative to the manifest output directory, forward-slashed.
type EntryPoints struct {
	Main    string `json:"main,omitempty" yaml:"main,omitempty"`
	Module  string `json:"module,omitempty" yaml:"module,omitempty"`
	ES2015  string `json:"es2015,omitempty" yaml:"es2015,omitempty"`
	ESM5    string `json:"esm5,omitempty" yaml:"esm5,omitempty"`
	ESM2015 string `json:"esm2015,omitempty" yaml:"esm2015,omitempty"`
	Typings string `json:"typings,omitempty" yaml:"typings,omitempty"`
}

// Fields returns the set fields keyed by manifest field name.
func (e EntryPoints) Fields() map[string]string {
	out := map[string]string{}
	for k, v := range map[string]string{
		"main": e.Main, "module": e.Module, "es2015": e.ES2015,
		"esm5": e.ESM5, "esm2015": e.ESM2015, "typings": e.Typings,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Project is the complete build plan of one project.
type Project struct {
	Name string `json:"name" yaml:"name"`
	// Skip is set when the project is filtered out; no other field is filled.
	Skip bool `json:"skip,omitempty" yaml:"skip,omitempty"`

	Resolved `yaml:",inline"`

	AppliedOverrides []string             `json:"appliedOverrides,omitempty" yaml:"appliedOverrides,omitempty"`
	Clean            *CleanPlan           `json:"clean,omitempty" yaml:"clean,omitempty"`
	Copy             []AssetPlan          `json:"copy,omitempty" yaml:"copy,omitempty"`
	Styles           []StylePlan          `json:"styles,omitempty" yaml:"styles,omitempty"`
	Transpilations   []TranspilationEntry `json:"transpilations,omitempty" yaml:"transpilations,omitempty"`
	Bundles          []BundleEntry        `json:"bundles,omitempty" yaml:"bundles,omitempty"`
	EntryPoints      EntryPoints          `json:"entryPoints" yaml:"entryPoints"`

	// Fingerprint is a stable hash of everything above.
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// computeFingerprint hashes the JSON encoding of the plan with an empty
// Fingerprint field.
func (p *Project) computeFingerprint() (string, error) {
	c := *p
	c.Fingerprint = ""
	data, err := json.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("encoding plan: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// PackageJSON is the subset of a package manifest the planner reads.
type PackageJSON struct {
	Name             string            `json:"name"`
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// DependencyNames returns the sorted dependency names.
func (p *PackageJSON) DependencyNames() []string {
	if p == nil {
		return nil
	}
	return sortedKeys(p.Dependencies)
}

// PeerDependencyNames returns the sorted peer dependency names.
func (p *PackageJSON) PeerDependencyNames() []string {
	if p == nil {
		return nil
	}
	return sortedKeys(p.PeerDependencies)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func readPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading package.json: %w", err)
	}
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &pkg, nil
}

// resolveLocations fills the derived location fields of a resolved config.
func resolveLocations(workspaceRoot string, cfg libconfig.ProjectConfig) (*Resolved, error) {
	r := &Resolved{
		Config:        cfg,
		WorkspaceRoot: pathutil.Normalize(workspaceRoot),
	}
	r.ProjectRoot = pathutil.Resolve(r.WorkspaceRoot, cfg.Root)

	if cfg.PackageJSON != "" {
		r.PackageJSONPath = pathutil.Resolve(r.ProjectRoot, cfg.PackageJSON)
		if !pathutil.Exists(r.PackageJSONPath) {
			return nil, libconfig.NewConfigError(nil,
				"The package.json file could not be found at '%s', config location 'projects[%s].packageJson'.",
				r.PackageJSONPath, cfg.Name)
		}
	} else {
		r.PackageJSONPath = pathutil.FindUp([]string{"package.json"}, r.ProjectRoot, r.WorkspaceRoot)
	}

	if r.PackageJSONPath != "" {
		pkg, err := readPackageJSON(r.PackageJSONPath)
		if err != nil {
			return nil, libconfig.NewConfigError(err, "Could not read '%s': %v.", r.PackageJSONPath, err)
		}
		r.Package = pkg
		r.PackageName = pkg.Name
	}
	if r.PackageName == "" {
		r.PackageName = cfg.Name
	}
	if r.PackageName == "" {
		return nil, libconfig.NewConfigError(nil,
			"Could not detect package name, config location 'projects[%s]'.", cfg.Root)
	}

	r.PackageNameWithoutScope = r.PackageName
	if strings.HasPrefix(r.PackageName, "@") {
		if scope, rest, ok := strings.Cut(r.PackageName, "/"); ok {
			r.PackageScope = scope
			r.PackageNameWithoutScope = rest
		}
	}
	r.NestedPackage = strings.Contains(r.PackageNameWithoutScope, "/")

	if err := r.resolveOutputPath(); err != nil {
		return nil, err
	}

	r.PackageJSONOutDir = r.OutputPath
	if r.NestedPackage {
		r.PackageJSONOutDir = filepath.Join(r.OutputPath, filepath.FromSlash(r.NestedSuffix()))
	}
	return r, nil
}

func (r *Resolved) resolveOutputPath() error {
	cfg := r.Config
	if cfg.OutputPath == "" {
		rootName := r.PackageNameWithoutScope
		if r.NestedPackage {
			rootName, _, _ = strings.Cut(rootName, "/")
		}
		if r.PackageScope != "" {
			rootName = r.PackageScope + "/" + rootName
		}
		r.OutputPath = filepath.Join(r.WorkspaceRoot, "dist", "packages", filepath.FromSlash(rootName))
		return nil
	}

	r.OutputPath = pathutil.Resolve(r.ProjectRoot, cfg.OutputPath)
	switch {
	case pathutil.IsSamePaths(r.OutputPath, r.WorkspaceRoot):
		return libconfig.NewInvalidConfigError(nil,
			"The 'projects[%s].outputPath' must not be the same as workspace root directory.", cfg.Name)
	case pathutil.IsSamePaths(r.OutputPath, r.ProjectRoot):
		return libconfig.NewInvalidConfigError(nil,
			"The 'projects[%s].outputPath' must not be the same as project root directory.", cfg.Name)
	case !pathutil.IsInFolder(r.WorkspaceRoot, r.OutputPath) && !libconfig.BoolValue(cfg.AllowOutsideWorkspaceRoot, false):
		return libconfig.NewInvalidConfigError(nil,
			"The 'projects[%s].outputPath' must not be outside of workspace root directory. "+
				"Set 'allowOutsideWorkspaceRoot' to allow it.", cfg.Name)
	}
	return nil
}
