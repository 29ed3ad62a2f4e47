package plan

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/pathutil"
	"github.com/Aakash-Pandya/lib-tools/internal/tsconfig"
)

// TsConfigCandidates are the compiler configuration names probed at each
// directory level, in priority order, when no tsConfig is configured.
var TsConfigCandidates = []string{
	"tsconfig.build.json",
	"tsconfig-build.json",
	"tsconfig.lib.json",
	"tsconfig-lib.json",
	"tsconfig.json",
}

// TranspilationEntry is one planned compiler pass.
type TranspilationEntry struct {
	Index        int                    `json:"index" yaml:"index"`
	TsConfigPath string                 `json:"tsConfigPath" yaml:"tsConfigPath"`
	ScriptTarget tsconfig.ScriptTarget  `json:"scriptTarget" yaml:"scriptTarget"`
	ModuleKind   *tsconfig.ModuleKind   `json:"moduleKind,omitempty" yaml:"moduleKind,omitempty"`
	Declaration  bool                   `json:"declaration" yaml:"declaration"`
	OutDir       string                 `json:"outDir" yaml:"outDir"`
	CustomOutDir bool                   `json:"customOutDir" yaml:"customOutDir"`
	// DetectedEntryName is the public entry module without extension, or "".
	DetectedEntryName string `json:"detectedEntryName,omitempty" yaml:"detectedEntryName,omitempty"`
	FlatModuleOutFile string `json:"flatModuleOutFile,omitempty" yaml:"flatModuleOutFile,omitempty"`
}

var jsExt = regexp.MustCompile(`(?i)\.js$`)

// transpilationEntries returns the configured entries, or one default entry
// when scriptTranspilation is true or has no entries.
func transpilationEntries(r *Resolved) ([]libconfig.ScriptTranspilationEntry, string) {
	st := r.Config.ScriptTranspilation
	if st == nil || !st.Enabled {
		return nil, ""
	}
	if st.Options == nil {
		return []libconfig.ScriptTranspilationEntry{{}}, ""
	}
	entries := st.Options.Entries
	if len(entries) == 0 {
		entries = []libconfig.ScriptTranspilationEntry{{}}
	}
	return entries, st.Options.TsConfig
}

// resolveTsConfigPaths picks the compiler configuration of every entry before
// any entry is planned. An entry without its own tsConfig uses the
// project-level one, then the path resolved for the previous entry; only the
// first entry falls back to discovery.
func resolveTsConfigPaths(r *Resolved, entries []libconfig.ScriptTranspilationEntry, projectTsConfig string) ([]string, error) {
	paths := make([]string, len(entries))
	lastTsConfigPath := ""
	for i, e := range entries {
		var p string
		switch {
		case e.TsConfig != "":
			p = pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(e.TsConfig))
		case projectTsConfig != "":
			p = pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(projectTsConfig))
		case i > 0:
			p = lastTsConfigPath
		default:
			p = pathutil.FindUp(TsConfigCandidates, r.ProjectRoot, r.WorkspaceRoot)
		}
		if p == "" {
			return nil, libconfig.NewConfigError(ErrTsConfigRequired,
				"The 'projects[%s].scriptTranspilation.entries[%d].tsConfig' value is required.", r.label(), i)
		}
		paths[i] = p
		lastTsConfigPath = p
	}
	return paths, nil
}

// planTranspilations plans every entry in index order and records their
// manifest contributions in ep.
func planTranspilations(r *Resolved, reader *tsconfig.Reader, ep *EntryPoints) ([]TranspilationEntry, error) {
	entries, projectTsConfig := transpilationEntries(r)
	if len(entries) == 0 {
		return nil, nil
	}

	paths, err := resolveTsConfigPaths(r, entries, projectTsConfig)
	if err != nil {
		return nil, err
	}

	out := make([]TranspilationEntry, 0, len(entries))
	for i, e := range entries {
		cfg, err := reader.Read(paths[i])
		if err != nil {
			return nil, libconfig.NewConfigError(err,
				"Could not read compiler configuration for 'projects[%s].scriptTranspilation.entries[%d]': %v.", r.label(), i, err)
		}
		te, err := planTranspilation(r, i, e, cfg)
		if err != nil {
			return nil, err
		}
		if err := te.contribute(r, ep); err != nil {
			return nil, err
		}
		out = append(out, te)
	}
	return out, nil
}

func planTranspilation(r *Resolved, i int, e libconfig.ScriptTranspilationEntry, cfg *tsconfig.Config) (TranspilationEntry, error) {
	opts := cfg.CompilerOptions
	te := TranspilationEntry{
		Index:        i,
		TsConfigPath: cfg.Path,
		ScriptTarget: tsconfig.DefaultScriptTarget,
		ModuleKind:   opts.Module,
		Declaration:  true,
	}

	switch {
	case e.Target != "":
		t, ok := tsconfig.ParseScriptTarget(e.Target)
		if !ok {
			return te, libconfig.NewConfigError(ErrInvalidScriptTarget,
				"Invalid script target value '%s'. Config location projects[%s].scriptTranspilation.entries[%d].",
				e.Target, r.label(), i)
		}
		te.ScriptTarget = t
	case opts.Target != nil:
		te.ScriptTarget = *opts.Target
	}

	switch {
	case e.Declaration != nil:
		te.Declaration = *e.Declaration
	case opts.Declaration != nil:
		te.Declaration = *opts.Declaration
	}

	switch {
	case e.OutDir != "":
		te.OutDir = pathutil.Resolve(r.OutputPath, filepath.FromSlash(e.OutDir))
		te.CustomOutDir = true
	case opts.OutDir != "":
		te.OutDir = pathutil.Resolve(cfg.Dir(), opts.OutDir)
	default:
		te.OutDir = r.OutputPath
		te.CustomOutDir = true
	}
	te.OutDir = pathutil.Resolve(te.OutDir, rootDirOffset(cfg.Dir(), opts.RootDir))

	if flat := cfg.FlatModuleOutFile(); flat != "" {
		te.FlatModuleOutFile = flat
		te.DetectedEntryName = jsExt.ReplaceAllString(flat, "")
	} else {
		te.DetectedEntryName = detectEntryName(cfg.Dir(), r.PackageNameWithoutScope)
	}
	return te, nil
}

// rootDirOffset is the sub-directory appended to the output directory when
// rootDir differs from the compiler configuration's directory, measured in
// whichever direction contains the other.
func rootDirOffset(tsDir, rootDir string) string {
	if rootDir == "" || pathutil.IsSamePaths(rootDir, tsDir) {
		return ""
	}
	var rel string
	var err error
	if pathutil.IsInFolder(rootDir, tsDir) {
		rel, err = pathutil.Relative(rootDir, tsDir)
	} else {
		rel, err = pathutil.Relative(tsDir, rootDir)
	}
	if err != nil {
		return ""
	}
	return filepath.FromSlash(pathutil.NormalizeRelativePath(rel))
}

// entryNameCandidates lists the probed entry module names in order.
func entryNameCandidates(nameWithoutScope string) []string {
	last := nameWithoutScope[strings.LastIndex(nameWithoutScope, "/")+1:]
	return []string{
		"index",
		strings.ReplaceAll(nameWithoutScope, "/", "-"),
		strings.ReplaceAll(last, "/", "-"),
		"main",
		"public_api",
		"public-api",
	}
}

// detectEntryName returns the first candidate with a .ts source in dir.
func detectEntryName(dir, nameWithoutScope string) string {
	for _, name := range entryNameCandidates(nameWithoutScope) {
		if pathutil.Exists(filepath.Join(dir, name+".ts")) {
			return name
		}
	}
	return ""
}

// contribute writes the entry's manifest fields. Entries without a detected
// entry module contribute nothing.
func (te TranspilationEntry) contribute(r *Resolved, ep *EntryPoints) error {
	if te.DetectedEntryName == "" {
		return nil
	}
	rel, err := pathutil.Relative(r.PackageJSONOutDir, filepath.Join(te.OutDir, te.DetectedEntryName))
	if err != nil {
		return fmt.Errorf("computing entry point path: %w", err)
	}
	jsFile := pathutil.NormalizeRelativePath(rel + ".js")

	if m := te.ModuleKind; m != nil {
		switch {
		case *m >= tsconfig.ModuleES2015 && te.ScriptTarget == tsconfig.TargetES2015:
			ep.ES2015 = jsFile
			ep.ESM2015 = jsFile
		case *m >= tsconfig.ModuleES2015 && te.ScriptTarget == tsconfig.TargetES5:
			ep.ESM5 = jsFile
			ep.Module = jsFile
		case *m == tsconfig.ModuleUMD || *m == tsconfig.ModuleCommonJS:
			ep.Main = jsFile
		}
	}

	if !te.Declaration {
		return nil
	}
	if r.NestedPackage {
		typings, err := pathutil.Relative(r.PackageJSONOutDir, filepath.Join(r.OutputPath, r.LastNameSegment()+".d.ts"))
		if err != nil {
			return fmt.Errorf("computing typings path: %w", err)
		}
		ep.Typings = pathutil.NormalizeRelativePath(typings)
		return nil
	}
	ep.Typings = pathutil.NormalizeRelativePath(rel + ".d.ts")
	return nil
}
