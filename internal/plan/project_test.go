package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
)

func TestDerive_PackageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		files         map[string]string
		project       string
		wantName      string
		wantScope     string
		wantUnscoped  string
		wantNested    bool
		wantOutput    string
		wantManifest  string
		wantPkgOutDir string
	}{
		{
			name:          "from nearest package.json",
			files:         map[string]string{"packages/core/package.json": `{"name": "@scope/core"}`},
			project:       `{"name": "core", "root": "packages/core"}`,
			wantName:      "@scope/core",
			wantScope:     "@scope",
			wantUnscoped:  "core",
			wantOutput:    "dist/packages/@scope/core",
			wantManifest:  "packages/core/package.json",
			wantPkgOutDir: "dist/packages/@scope/core",
		},
		{
			name:          "package.json found further up",
			files:         map[string]string{"package.json": `{"name": "workspace-lib"}`},
			project:       `{"name": "core", "root": "packages/core"}`,
			wantName:      "workspace-lib",
			wantUnscoped:  "workspace-lib",
			wantOutput:    "dist/packages/workspace-lib",
			wantManifest:  "package.json",
			wantPkgOutDir: "dist/packages/workspace-lib",
		},
		{
			name:          "explicit packageJson",
			files:         map[string]string{"packages/core/pkg/package.json": `{"name": "explicit"}`},
			project:       `{"name": "core", "root": "packages/core", "packageJson": "pkg/package.json"}`,
			wantName:      "explicit",
			wantUnscoped:  "explicit",
			wantOutput:    "dist/packages/explicit",
			wantManifest:  "packages/core/pkg/package.json",
			wantPkgOutDir: "dist/packages/explicit",
		},
		{
			name:          "falls back to project name",
			project:       `{"name": "bare", "root": "packages/bare"}`,
			wantName:      "bare",
			wantUnscoped:  "bare",
			wantOutput:    "dist/packages/bare",
			wantPkgOutDir: "dist/packages/bare",
		},
		{
			name:          "nested scoped package",
			files:         map[string]string{"packages/core/testing/package.json": `{"name": "@scope/core/testing"}`},
			project:       `{"name": "testing", "root": "packages/core/testing"}`,
			wantName:      "@scope/core/testing",
			wantScope:     "@scope",
			wantUnscoped:  "core/testing",
			wantNested:    true,
			wantOutput:    "dist/packages/@scope/core",
			wantManifest:  "packages/core/testing/package.json",
			wantPkgOutDir: "dist/packages/@scope/core/testing",
		},
		{
			name:          "explicit output path",
			files:         map[string]string{"packages/core/package.json": `{"name": "core"}`},
			project:       `{"name": "core", "root": "packages/core", "outputPath": "../../out/core"}`,
			wantName:      "core",
			wantUnscoped:  "core",
			wantOutput:    "out/core",
			wantManifest:  "packages/core/package.json",
			wantPkgOutDir: "out/core",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := newWorkspace(t)
			for rel, content := range tt.files {
				w.file(rel, content)
			}

			p := w.planOne(`{"projects": [`+tt.project+`]}`, BuildOptions{})

			assert.Equal(t, w.root, p.WorkspaceRoot)
			assert.Equal(t, tt.wantName, p.PackageName)
			assert.Equal(t, tt.wantScope, p.PackageScope)
			assert.Equal(t, tt.wantUnscoped, p.PackageNameWithoutScope)
			assert.Equal(t, tt.wantNested, p.NestedPackage)
			assert.Equal(t, w.path(tt.wantOutput), p.OutputPath)
			assert.Equal(t, w.path(tt.wantPkgOutDir), p.PackageJSONOutDir)
			if tt.wantManifest == "" {
				assert.Empty(t, p.PackageJSONPath)
			} else {
				assert.Equal(t, w.path(tt.wantManifest), p.PackageJSONPath)
			}
			assert.NotEmpty(t, p.Fingerprint)
		})
	}
}

func TestDerive_OutputPathConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		project string
		wantErr string
	}{
		{
			name:    "outside workspace",
			project: `{"name": "core", "root": "packages/core", "outputPath": "../../../elsewhere"}`,
			wantErr: "must not be outside of workspace root directory",
		},
		{
			name:    "workspace root",
			project: `{"name": "core", "root": "packages/core", "outputPath": "../.."}`,
			wantErr: "must not be the same as workspace root directory",
		},
		{
			name:    "project root",
			project: `{"name": "core", "root": "packages/core", "outputPath": "."}`,
			wantErr: "must not be the same as project root directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := newWorkspace(t)
			w.file("packages/core/package.json", `{"name": "core"}`)

			err := w.planErr(`{"projects": [` + tt.project + `]}`)
			require.Error(t, err)
			var invalid *libconfig.InvalidConfigError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDerive_AllowOutsideWorkspaceRoot(t *testing.T) {
	t.Parallel()
	w := newWorkspace(t)
	w.file("ws/packages/core/package.json", `{"name": "core"}`)
	p := w.file("ws/libconfig.json", `{"projects": [{"name": "core", "root": "packages/core",
		"outputPath": "../../../out", "allowOutsideWorkspaceRoot": true}]}`)

	doc, err := libconfig.NewLoader().Load(p)
	require.NoError(t, err)
	project, err := newPlanner(t).PlanProject(doc, 0, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, w.path("out"), project.OutputPath)
}

func TestDerive_MissingExplicitPackageJSON(t *testing.T) {
	t.Parallel()
	w := newWorkspace(t)
	err := w.planErr(`{"projects": [{"name": "core", "root": "packages/core", "packageJson": "package.json"}]}`)
	var cfgErr *libconfig.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "projects[core].packageJson")
}

func TestDerive_NoPackageName(t *testing.T) {
	t.Parallel()
	w := newWorkspace(t)
	w.file("packages/anon/package.json", `{"version": "1.0.0"}`)
	err := w.planErr(`{"projects": [{"root": "packages/anon"}]}`)
	var cfgErr *libconfig.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "Could not detect package name")
}

func TestDerive_SkipWhenFiltered(t *testing.T) {
	t.Parallel()
	pl := newPlanner(t)
	cfg := libconfig.ProjectConfig{Name: "core", Root: "packages/core"}

	p, err := pl.DeriveProject(t.TempDir(), cfg, BuildOptions{Filter: []string{"other"}})
	require.NoError(t, err)
	assert.True(t, p.Skip)
	assert.Equal(t, "core", p.Name)
	assert.Empty(t, p.OutputPath)
}

func TestDerive_ZeroOverridesRoundTrip(t *testing.T) {
	t.Parallel()
	w := newWorkspace(t)
	w.file("packages/core/package.json", `{"name": "core"}`)
	w.file("packages/core/tsconfig.json", `{"compilerOptions": {"module": "commonjs"}}`)
	w.file("packages/core/index.ts", ``)

	without := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "scriptTranspilation": true}]}`, BuildOptions{})
	with := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "scriptTranspilation": true, "envOverrides": {}}]}`,
		BuildOptions{Environment: libconfig.Environment{"prod": true}})

	assert.Empty(t, with.AppliedOverrides)
	assert.Equal(t, without.Fingerprint, with.Fingerprint)
	assert.Equal(t, without.Transpilations, with.Transpilations)
	assert.Equal(t, without.EntryPoints, with.EntryPoints)
}

func TestDerive_FingerprintStable(t *testing.T) {
	t.Parallel()
	w := newWorkspace(t)
	w.file("packages/core/package.json", `{"name": "core"}`)
	config := `{"projects": [{"name": "core", "root": "packages/core", "copy": ["README.md"]}]}`

	first := w.planOne(config, BuildOptions{})
	second := w.planOne(config, BuildOptions{})
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Len(t, first.Fingerprint, 16)

	changed := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "copy": ["LICENSE"]}]}`, BuildOptions{})
	assert.NotEqual(t, first.Fingerprint, changed.Fingerprint)
}
