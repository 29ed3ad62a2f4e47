package libconfig

// LibConfig is the top-level structure of a libconfig.json document.
type LibConfig struct {
	Schema   string          `json:"$schema,omitempty"`
	Projects []ProjectConfig `json:"projects"`
}

// ProjectConfig is one user-authored project entry. Option blocks live on the
// embedded BuildAction so that environment overrides can reuse the same shape.
type ProjectConfig struct {
	// Name identifies the project for extends references and --project filters.
	Name string `json:"name,omitempty"`
	// Root is the project root relative to the workspace root.
	Root string `json:"root,omitempty"`
	// Extends names another project whose settings this one inherits.
	Extends string `json:"extends,omitempty"`
	// PackageJSON is the package manifest path relative to the project root.
	PackageJSON string `json:"packageJson,omitempty"`

	BuildAction

	// EnvOverrides are partial BuildActions applied when their name is truthy
	// in the build environment, in declared order.
	EnvOverrides EnvOverrides `json:"envOverrides,omitempty"`
}

// BuildAction holds the build option blocks. Every field is optional; unset
// means "inherit or default".
type BuildAction struct {
	// OutputPath defaults to dist/packages/<package name>.
	OutputPath string `json:"outputPath,omitempty"`
	// AllowOutsideWorkspaceRoot permits an output path outside the workspace.
	AllowOutsideWorkspaceRoot *bool `json:"allowOutsideWorkspaceRoot,omitempty"`

	Clean               *Toggle[CleanOptions]               `json:"clean,omitempty"`
	Copy                *CopySetting                        `json:"copy,omitempty"`
	Style               *StyleOptions                       `json:"style,omitempty"`
	ScriptTranspilation *Toggle[ScriptTranspilationOptions] `json:"scriptTranspilation,omitempty"`
	ScriptBundle        *Toggle[ScriptBundleOptions]        `json:"scriptBundle,omitempty"`
}

// BeforeBuildCleanOptions controls cleaning before the build starts.
type BeforeBuildCleanOptions struct {
	CleanOutDir *bool    `json:"cleanOutDir,omitempty"`
	CleanCache  *bool    `json:"cleanCache,omitempty"`
	Paths       []string `json:"paths,omitempty"`
	Excludes    []string `json:"excludes,omitempty"`
}

// AfterEmitCleanOptions controls cleaning after output has been emitted.
type AfterEmitCleanOptions struct {
	Paths    []string `json:"paths,omitempty"`
	Excludes []string `json:"excludes,omitempty"`
}

// CleanOptions is the object form of the clean block.
type CleanOptions struct {
	BeforeBuild               *BeforeBuildCleanOptions `json:"beforeBuild,omitempty"`
	AfterEmit                 *AfterEmitCleanOptions   `json:"afterEmit,omitempty"`
	AllowOutsideOutDir        *bool                    `json:"allowOutsideOutDir,omitempty"`
	AllowOutsideWorkspaceRoot *bool                    `json:"allowOutsideWorkspaceRoot,omitempty"`
}

// StyleEntry is one style compilation input.
type StyleEntry struct {
	Input             string                  `json:"input"`
	Output            string                  `json:"output,omitempty"`
	SourceMap         *bool                   `json:"sourceMap,omitempty"`
	SourceMapContents *bool                   `json:"sourceMapContents,omitempty"`
	VendorPrefixes    *Toggle[map[string]any] `json:"vendorPrefixes,omitempty"`
	Minify            *Toggle[map[string]any] `json:"minify,omitempty"`
	IncludePaths      []string                `json:"includePaths,omitempty"`
}

// StyleOptions carries style entries and the defaults applied to them.
// Autoprefixer and clean-css option objects are passed through untouched.
type StyleOptions struct {
	Entries           []StyleEntry            `json:"entries,omitempty"`
	SourceMap         *bool                   `json:"sourceMap,omitempty"`
	SourceMapContents *bool                   `json:"sourceMapContents,omitempty"`
	VendorPrefixes    *Toggle[map[string]any] `json:"vendorPrefixes,omitempty"`
	Minify            *Toggle[map[string]any] `json:"minify,omitempty"`
	IncludePaths      []string                `json:"includePaths,omitempty"`
	AddToPackageJSON  *bool                   `json:"addToPackageJson,omitempty"`
}

// ScriptTranspilationEntry configures one compiler pass.
type ScriptTranspilationEntry struct {
	TsConfig    string `json:"tsConfig,omitempty"`
	OutDir      string `json:"outDir,omitempty"`
	Target      string `json:"target,omitempty"`
	Declaration *bool  `json:"declaration,omitempty"`
}

// ScriptTranspilationOptions is the object form of scriptTranspilation.
type ScriptTranspilationOptions struct {
	Entries  []ScriptTranspilationEntry `json:"entries,omitempty"`
	TsConfig string                     `json:"tsConfig,omitempty"`
}

// CommonJSOptions configures CommonJS-to-ESM conversion in the bundler.
type CommonJSOptions struct {
	DynamicRequireTargets []string `json:"dynamicRequireTargets,omitempty"`
	Exclude               []string `json:"exclude,omitempty"`
	Include               []string `json:"include,omitempty"`
	IgnoreGlobal          *bool    `json:"ignoreGlobal,omitempty"`
}

// Library targets accepted by ScriptBundleEntry.LibraryTarget.
const (
	LibraryTargetCommonJS = "cjs"
	LibraryTargetUMD      = "umd"
	LibraryTargetESM      = "esm"
)

// Entry roots accepted by ScriptBundleEntry.EntryRoot.
const (
	EntryRootProject             = "projectRoot"
	EntryRootTranspilationOutput = "transpilationOutput"
	EntryRootPrevBundleOutput    = "prevBundleOutput"
)

// ScriptBundleEntry configures one bundler pass.
type ScriptBundleEntry struct {
	LibraryTarget               string                   `json:"libraryTarget"`
	Entry                       string                   `json:"entry,omitempty"`
	EntryRoot                   string                   `json:"entryRoot,omitempty"`
	TsConfig                    string                   `json:"tsConfig,omitempty"`
	TranspilationEntryIndex     *int                     `json:"transpilationEntryIndex,omitempty"`
	OutputFilePath              string                   `json:"outputFilePath,omitempty"`
	Externals                   Externals                `json:"externals,omitempty"`
	DependenciesAsExternals     *bool                    `json:"dependenciesAsExternals,omitempty"`
	PeerDependenciesAsExternals *bool                    `json:"peerDependenciesAsExternals,omitempty"`
	IncludeCommonJS             *Toggle[CommonJSOptions] `json:"includeCommonJs,omitempty"`
	Minify                      *bool                    `json:"minify,omitempty"`
}

// ScriptBundleOptions is the object form of scriptBundle. Fields other than
// Entries act as defaults for every entry.
type ScriptBundleOptions struct {
	Entries                     []ScriptBundleEntry      `json:"entries,omitempty"`
	Entry                       string                   `json:"entry,omitempty"`
	LibraryName                 string                   `json:"libraryName,omitempty"`
	Externals                   Externals                `json:"externals,omitempty"`
	IncludeCommonJS             *Toggle[CommonJSOptions] `json:"includeCommonJs,omitempty"`
	DependenciesAsExternals     *bool                    `json:"dependenciesAsExternals,omitempty"`
	PeerDependenciesAsExternals *bool                    `json:"peerDependenciesAsExternals,omitempty"`
	SourceMap                   *bool                    `json:"sourceMap,omitempty"`
	Banner                      string                   `json:"banner,omitempty"`
}

// BoolValue dereferences b, returning def when b is nil.
func BoolValue(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
