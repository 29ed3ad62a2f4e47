package plan

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Aakash-Pandya/lib-tools/internal/pathutil"
)

// AssetPlan is one copy operation.
type AssetPlan struct {
	// From is an absolute path, or an absolute slash-separated glob when Glob is set.
	From    string   `json:"from" yaml:"from"`
	To      string   `json:"to" yaml:"to"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Glob    bool     `json:"glob,omitempty" yaml:"glob,omitempty"`
}

// Default asset probes, in priority order. The first existing match per
// pattern wins, looking in the project root before the workspace root.
var defaultAssetPatterns = []string{
	"{README,readme,Readme}.md",
	"{LICENSE,LICENSE.md,LICENSE.txt,LICENCE,LICENCE.md,license,license.md,license.txt}",
}

func planCopy(r *Resolved) []AssetPlan {
	setting := r.Config.Copy
	if setting != nil && !setting.Enabled {
		return nil
	}
	if setting == nil || setting.Assets == nil {
		return defaultAssets(r)
	}

	out := make([]AssetPlan, 0, len(setting.Assets))
	for _, a := range setting.Assets {
		ap := AssetPlan{
			To:      pathutil.Resolve(r.OutputPath, filepath.FromSlash(a.To)),
			Exclude: a.Exclude,
		}
		if hasMeta(a.From) {
			ap.Glob = true
			ap.From = filepath.ToSlash(pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(a.From)))
		} else {
			ap.From = pathutil.Resolve(r.ProjectRoot, filepath.FromSlash(a.From))
		}
		out = append(out, ap)
	}
	return out
}

func defaultAssets(r *Resolved) []AssetPlan {
	dirs := []string{r.ProjectRoot}
	if !pathutil.IsSamePaths(r.ProjectRoot, r.WorkspaceRoot) {
		dirs = append(dirs, r.WorkspaceRoot)
	}

	var out []AssetPlan
	for _, pattern := range defaultAssetPatterns {
		for _, dir := range dirs {
			if name := firstMatch(dir, pattern); name != "" {
				out = append(out, AssetPlan{
					From: filepath.Join(dir, name),
					To:   filepath.Join(r.OutputPath, name),
				})
				break
			}
		}
	}
	return out
}

// firstMatch returns the lexically first regular file in dir matching pattern.
func firstMatch(dir, pattern string) string {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil || len(matches) == 0 {
		return ""
	}
	slices.Sort(matches)
	return matches[0]
}
