package tsconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tailscale/hujson"

	"github.com/Aakash-Pandya/lib-tools/internal/logging"
)

// DefaultCacheSize bounds the number of parsed files a Reader keeps.
const DefaultCacheSize = 256

// MaxExtendsDepth bounds the length of an extends chain.
const MaxExtendsDepth = 32

var (
	// ErrExtendsNotFound is returned when an extends reference cannot be found
	// on disk or under any node_modules directory.
	ErrExtendsNotFound = errors.New("extended tsconfig not found")

	// ErrExtendsCycle is returned when a file extends itself, directly or not.
	ErrExtendsCycle = errors.New("tsconfig extends cycle")
)

// CompilerOptions are the effective compiler options of a configuration after
// its extends chain has been merged.
type CompilerOptions struct {
	Target      *ScriptTarget
	Module      *ModuleKind
	Declaration *bool
	// OutDir and RootDir are absolute, resolved against the file declaring them.
	OutDir  string
	RootDir string

	// Raw holds every merged compilerOptions key as written.
	Raw map[string]json.RawMessage
}

// Config is a parsed compiler configuration. The raw maps are shared with the
// Reader's cache and must not be modified.
type Config struct {
	// Path is the absolute path of the file that was read.
	Path            string
	CompilerOptions CompilerOptions
	// AngularCompilerOptions holds the merged angularCompilerOptions block.
	AngularCompilerOptions map[string]json.RawMessage
}

// Dir returns the directory containing the configuration file.
func (c *Config) Dir() string {
	return filepath.Dir(c.Path)
}

// FlatModuleOutFile returns angularCompilerOptions.flatModuleOutFile, or "".
func (c *Config) FlatModuleOutFile() string {
	raw, ok := c.AngularCompilerOptions["flatModuleOutFile"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// layer is one file's options merged with everything it extends.
type layer struct {
	compiler map[string]json.RawMessage
	angular  map[string]json.RawMessage
}

// file is the on-disk shape of a tsconfig document.
type file struct {
	Extends                json.RawMessage            `json:"extends"`
	CompilerOptions        map[string]json.RawMessage `json:"compilerOptions"`
	AngularCompilerOptions map[string]json.RawMessage `json:"angularCompilerOptions"`
}

// Reader parses compiler configurations and caches merged results by
// absolute path. A Reader is safe for concurrent use.
type Reader struct {
	logger *log.Logger
	cache  *lru.Cache[string, *layer]
}

// NewReader returns a Reader whose cache holds up to size parsed files. A
// non-positive size selects DefaultCacheSize.
func NewReader(size int) (*Reader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *layer](size)
	if err != nil {
		return nil, fmt.Errorf("creating tsconfig cache: %w", err)
	}
	return &Reader{logger: logging.New("tsconfig"), cache: cache}, nil
}

// Read parses the configuration at path and everything it extends.
func (r *Reader) Read(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving tsconfig path: %w", err)
	}

	l, err := r.load(abs, nil)
	if err != nil {
		return nil, err
	}

	opts, err := r.decodeCompilerOptions(abs, l.compiler)
	if err != nil {
		return nil, fmt.Errorf("tsconfig %s: %w", abs, err)
	}
	return &Config{
		Path:                   abs,
		CompilerOptions:        opts,
		AngularCompilerOptions: l.angular,
	}, nil
}

// Purge drops every cached file.
func (r *Reader) Purge() {
	r.cache.Purge()
}

func (r *Reader) load(path string, chain []string) (*layer, error) {
	if cached, ok := r.cache.Get(path); ok {
		return cached, nil
	}
	for _, seen := range chain {
		if seen == path {
			return nil, fmt.Errorf("tsconfig %s: %w: %s", chain[0], ErrExtendsCycle, strings.Join(append(chain, path), " -> "))
		}
	}
	if len(chain) >= MaxExtendsDepth {
		return nil, fmt.Errorf("tsconfig %s: extends chain exceeds %d levels", chain[0], MaxExtendsDepth)
	}
	chain = append(chain, path)

	r.logger.Debug("reading compiler config", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tsconfig: %w", err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parsing tsconfig %s: %w", path, err)
	}
	var f file
	if err := json.Unmarshal(std, &f); err != nil {
		return nil, fmt.Errorf("parsing tsconfig %s: %w", path, err)
	}

	bases, err := extendsList(f.Extends)
	if err != nil {
		return nil, fmt.Errorf("tsconfig %s: %w", path, err)
	}

	merged := &layer{
		compiler: map[string]json.RawMessage{},
		angular:  map[string]json.RawMessage{},
	}
	dir := filepath.Dir(path)
	for _, spec := range bases {
		basePath, err := resolveExtends(dir, spec)
		if err != nil {
			return nil, fmt.Errorf("tsconfig %s: %w", path, err)
		}
		base, err := r.load(basePath, chain)
		if err != nil {
			return nil, err
		}
		mergeInto(merged.compiler, base.compiler)
		mergeInto(merged.angular, base.angular)
	}

	own, err := absolutizeDirs(dir, f.CompilerOptions)
	if err != nil {
		return nil, fmt.Errorf("tsconfig %s: %w", path, err)
	}
	mergeInto(merged.compiler, own)
	mergeInto(merged.angular, f.AngularCompilerOptions)

	r.cache.Add(path, merged)
	return merged, nil
}

// extendsList accepts the string and array forms of "extends".
func extendsList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil, nil
		}
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("extends must be a string or an array of strings")
	}
	return many, nil
}

// resolveExtends locates an extends target. Relative and absolute paths are
// resolved against dir; anything else is a package specifier looked up in
// node_modules directories from dir upward.
func resolveExtends(dir, spec string) (string, error) {
	if filepath.IsAbs(spec) || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		spec == "." || spec == ".." {
		if p, ok := probeFile(absOrJoin(dir, spec)); ok {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrExtendsNotFound, spec)
	}

	for d := dir; ; {
		if p, ok := probeFile(filepath.Join(d, "node_modules", filepath.FromSlash(spec))); ok {
			return p, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return "", fmt.Errorf("%w: %s", ErrExtendsNotFound, spec)
}

func absOrJoin(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}

// probeFile tries p, p.json and p/tsconfig.json in that order.
func probeFile(p string) (string, bool) {
	candidates := []string{p}
	if !strings.EqualFold(filepath.Ext(p), ".json") {
		candidates = append(candidates, p+".json")
	}
	candidates = append(candidates, filepath.Join(p, "tsconfig.json"))
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return filepath.Clean(c), true
		}
	}
	return "", false
}

// absolutizeDirs returns opts with outDir and rootDir rewritten as absolute
// paths relative to dir, so that inherited values keep pointing where their
// declaring file meant.
func absolutizeDirs(dir string, opts map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	if len(opts) == 0 {
		return opts, nil
	}
	out := make(map[string]json.RawMessage, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	for _, key := range []string{"outDir", "rootDir"} {
		raw, ok := out[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("compilerOptions.%s must be a string", key)
		}
		if s == "" {
			delete(out, key)
			continue
		}
		encoded, err := json.Marshal(absOrJoin(dir, s))
		if err != nil {
			return nil, err
		}
		out[key] = encoded
	}
	return out, nil
}

func mergeInto(dst, src map[string]json.RawMessage) {
	for k, v := range src {
		dst[k] = v
	}
}

// decodeCompilerOptions reads the typed options. Target and module names this
// package does not know are left unset and kept in Raw.
func (r *Reader) decodeCompilerOptions(path string, raw map[string]json.RawMessage) (CompilerOptions, error) {
	opts := CompilerOptions{Raw: raw}

	if v, ok := raw["target"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return opts, fmt.Errorf("compilerOptions.target must be a string")
		}
		if t, ok := ParseScriptTarget(s); ok {
			opts.Target = &t
		} else {
			r.logger.Warn("ignoring unknown compilerOptions.target", "path", path, "target", s)
		}
	}
	if v, ok := raw["module"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return opts, fmt.Errorf("compilerOptions.module must be a string")
		}
		if m, ok := ParseModuleKind(s); ok {
			opts.Module = &m
		} else {
			r.logger.Warn("ignoring unknown compilerOptions.module", "path", path, "module", s)
		}
	}
	if v, ok := raw["declaration"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return opts, fmt.Errorf("compilerOptions.declaration must be a boolean")
		}
		opts.Declaration = &b
	}
	for key, dst := range map[string]*string{"outDir": &opts.OutDir, "rootDir": &opts.RootDir} {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return opts, fmt.Errorf("compilerOptions.%s must be a string", key)
			}
		}
	}
	return opts, nil
}
