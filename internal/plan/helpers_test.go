package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/tsconfig"
)

// workspace is a throwaway directory tree holding a libconfig.json and the
// files its projects reference.
type workspace struct {
	t    *testing.T
	root string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	return &workspace{t: t, root: t.TempDir()}
}

// file writes content at the slash-separated path rel and returns its
// absolute path.
func (w *workspace) file(rel, content string) string {
	w.t.Helper()
	p := w.path(rel)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(w.t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (w *workspace) path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// doc writes libconfig.json and loads it.
func (w *workspace) doc(config string) *libconfig.Document {
	w.t.Helper()
	p := w.file(libconfig.ConfigFileName, config)
	doc, err := libconfig.NewLoader().Load(p)
	require.NoError(w.t, err)
	return doc
}

func newPlanner(t *testing.T) *Planner {
	t.Helper()
	reader, err := tsconfig.NewReader(0)
	require.NoError(t, err)
	return New(libconfig.NewLoader(), reader)
}

// planOne plans the only project of config and fails the test on error.
func (w *workspace) planOne(config string, opts BuildOptions) *Project {
	w.t.Helper()
	doc := w.doc(config)
	project, err := newPlanner(w.t).PlanProject(doc, 0, opts)
	require.NoError(w.t, err)
	return project
}

// planErr plans the only project of config and returns the error.
func (w *workspace) planErr(config string) error {
	w.t.Helper()
	doc := w.doc(config)
	_, err := newPlanner(w.t).PlanProject(doc, 0, BuildOptions{})
	return err
}
