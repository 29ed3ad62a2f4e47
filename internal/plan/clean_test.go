package plan

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
)

func cleanWorkspace(t *testing.T, pkgName string) *workspace {
	t.Helper()
	w := newWorkspace(t)
	w.file("packages/core/package.json", `{"name": "`+pkgName+`"}`)
	return w
}

func TestClean_Defaults(t *testing.T) {
	t.Parallel()
	w := cleanWorkspace(t, "core")

	p := w.planOne(`{"projects": [{"name": "core", "root": "packages/core"}]}`, BuildOptions{})

	require.NotNil(t, p.Clean)
	assert.Equal(t, w.path("dist/packages/core"), p.Clean.OutDir)
	assert.True(t, p.Clean.BeforeBuild.CleanOutDir)
	assert.True(t, p.Clean.BeforeBuild.CleanCache)
	assert.Empty(t, p.Clean.BeforeBuild.Paths)
	assert.Empty(t, p.Clean.AfterEmit.Paths)
	assert.False(t, p.Clean.AllowOutsideOutDir)
	assert.False(t, p.Clean.AllowOutsideWorkspaceRoot)
}

func TestClean_Disabled(t *testing.T) {
	t.Parallel()
	w := cleanWorkspace(t, "core")
	p := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "clean": false}]}`, BuildOptions{})
	assert.Nil(t, p.Clean)
}

func TestClean_Paths(t *testing.T) {
	t.Parallel()
	w := cleanWorkspace(t, "core")

	p := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "clean": {
		"beforeBuild": {"cleanCache": false, "paths": ["esm5", "bundles/*.map", "keep.txt"], "excludes": ["keep.txt"]},
		"afterEmit": {"paths": ["**/*.tsbuildinfo", "tmp"], "excludes": ["tmp"]}
	}}]}`, BuildOptions{})

	out := w.path("dist/packages/core")
	require.NotNil(t, p.Clean)
	assert.False(t, p.Clean.BeforeBuild.CleanCache)
	assert.True(t, p.Clean.BeforeBuild.CleanOutDir)
	assert.Equal(t, []string{
		filepath.Join(out, "esm5"),
		filepath.Join(out, "bundles", "*.map"),
	}, p.Clean.BeforeBuild.Paths)
	assert.Equal(t, []string{filepath.ToSlash(filepath.Join(out, "keep.txt"))}, p.Clean.BeforeBuild.Excludes)
	assert.Equal(t, []string{filepath.Join(out, "**", "*.tsbuildinfo")}, p.Clean.AfterEmit.Paths)
}

func TestClean_ExcludeGlobDropsLiteral(t *testing.T) {
	t.Parallel()
	w := cleanWorkspace(t, "core")

	p := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "clean": {
		"afterEmit": {"paths": ["a.js", "b.ts", "sub/c.js"], "excludes": ["**/*.js"]}
	}}]}`, BuildOptions{})

	assert.Equal(t, []string{w.path("dist/packages/core/b.ts")}, p.Clean.AfterEmit.Paths)
}

func TestClean_Containment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		clean   string
		wantErr string
		want    []string
	}{
		{
			name:    "outside output directory",
			clean:   `{"beforeBuild": {"paths": ["../other"]}}`,
			wantErr: "allowOutsideOutDir",
		},
		{
			name:    "glob outside output directory",
			clean:   `{"afterEmit": {"paths": ["../other/**/*.js"]}}`,
			wantErr: "projects[core].clean.afterEmit.paths",
		},
		{
			name:  "outside output directory allowed",
			clean: `{"beforeBuild": {"paths": ["../other"]}, "allowOutsideOutDir": true}`,
			want:  []string{"dist/packages/other"},
		},
		{
			name:    "outside workspace",
			clean:   `{"beforeBuild": {"paths": ["../../../../elsewhere"]}, "allowOutsideOutDir": true}`,
			wantErr: "allowOutsideWorkspaceRoot",
		},
		{
			name:  "output directory itself",
			clean: `{"beforeBuild": {"paths": ["."]}}`,
			want:  []string{"dist/packages/core"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := cleanWorkspace(t, "core")
			config := `{"projects": [{"name": "core", "root": "packages/core", "clean": ` + tt.clean + `}]}`

			if tt.wantErr != "" {
				err := w.planErr(config)
				var invalid *libconfig.InvalidConfigError
				require.ErrorAs(t, err, &invalid)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			p := w.planOne(config, BuildOptions{})
			var want []string
			for _, rel := range tt.want {
				want = append(want, w.path(rel))
			}
			assert.Equal(t, want, p.Clean.BeforeBuild.Paths)
		})
	}
}

func TestClean_NestedPackage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		clean           string
		wantCleanOutDir bool
	}{
		{name: "default", clean: `true`, wantCleanOutDir: true},
		{name: "explicit true is turned off", clean: `{"beforeBuild": {"cleanOutDir": true}}`, wantCleanOutDir: false},
		{name: "explicit false", clean: `{"beforeBuild": {"cleanOutDir": false}}`, wantCleanOutDir: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := cleanWorkspace(t, "@scope/core/testing")
			p := w.planOne(`{"projects": [{"name": "testing", "root": "packages/core", "clean": `+tt.clean+`}]}`, BuildOptions{})

			require.NotNil(t, p.Clean)
			assert.Equal(t, w.path("dist/packages/@scope/core/testing"), p.Clean.OutDir)
			assert.Equal(t, tt.wantCleanOutDir, p.Clean.BeforeBuild.CleanOutDir)
		})
	}
}
