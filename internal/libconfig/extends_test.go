package libconfig

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestApplyExtends_NoExtendsIsIdentity(t *testing.T) {
	t.Parallel()
	p := ProjectConfig{
		Name: "core",
		Root: "packages/core",
		BuildAction: BuildAction{
			OutputPath: "dist/core",
			Copy:       &CopySetting{Enabled: true, Assets: []AssetEntry{{From: "README.md"}}},
		},
	}

	got, err := ApplyExtends(p, []ProjectConfig{p})
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("ApplyExtends mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyExtends_CloserWins(t *testing.T) {
	t.Parallel()
	base := ProjectConfig{
		Name:        "base",
		Root:        "packages/base",
		PackageJSON: "package.base.json",
		BuildAction: BuildAction{
			OutputPath:          "dist/base",
			Clean:               Off[CleanOptions](),
			ScriptTranspilation: On(&ScriptTranspilationOptions{TsConfig: "tsconfig.base.json"}),
		},
	}
	mid := ProjectConfig{
		Name:    "mid",
		Extends: "base",
		BuildAction: BuildAction{
			OutputPath:                "dist/mid",
			AllowOutsideWorkspaceRoot: boolPtr(true),
		},
	}
	leaf := ProjectConfig{
		Name:    "leaf",
		Root:    "packages/leaf",
		Extends: "mid",
		BuildAction: BuildAction{
			ScriptTranspilation: On(&ScriptTranspilationOptions{TsConfig: "tsconfig.leaf.json"}),
		},
	}
	all := []ProjectConfig{base, mid, leaf}

	got, err := ApplyExtends(leaf, all)
	require.NoError(t, err)

	assert.Equal(t, "leaf", got.Name)
	assert.Equal(t, "packages/leaf", got.Root)
	assert.Empty(t, got.Extends)
	assert.Equal(t, "package.base.json", got.PackageJSON)
	assert.Equal(t, "dist/mid", got.OutputPath)
	assert.True(t, BoolValue(got.AllowOutsideWorkspaceRoot, false))
	require.NotNil(t, got.Clean)
	assert.False(t, got.Clean.Enabled)
	// Blocks are replaced, never deep-merged.
	assert.Equal(t, "tsconfig.leaf.json", got.ScriptTranspilation.Options.TsConfig)
	assert.Empty(t, got.ScriptTranspilation.Options.Entries)
}

func TestApplyExtends_Idempotent(t *testing.T) {
	t.Parallel()
	base := ProjectConfig{Name: "base", BuildAction: BuildAction{OutputPath: "dist/base"}}
	child := ProjectConfig{Name: "child", Extends: "base"}
	all := []ProjectConfig{base, child}

	once, err := ApplyExtends(child, all)
	require.NoError(t, err)
	twice, err := ApplyExtends(once, all)
	require.NoError(t, err)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second ApplyExtends changed the result (-once +twice):\n%s", diff)
	}
}

func TestApplyExtends_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	base := ProjectConfig{Name: "base", BuildAction: BuildAction{OutputPath: "dist/base"}}
	child := ProjectConfig{Name: "child", Extends: "base", BuildAction: BuildAction{OutputPath: "dist/child"}}
	all := []ProjectConfig{base, child}

	_, err := ApplyExtends(child, all)
	require.NoError(t, err)
	assert.Equal(t, "dist/base", all[0].OutputPath)
	assert.Equal(t, "base", all[1].Extends)
}

func TestApplyExtends_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		projects []ProjectConfig
	}{
		{
			name:     "self",
			projects: []ProjectConfig{{Name: "a", Extends: "a"}},
		},
		{
			name: "two",
			projects: []ProjectConfig{
				{Name: "a", Extends: "b"},
				{Name: "b", Extends: "a"},
			},
		},
		{
			name: "three",
			projects: []ProjectConfig{
				{Name: "a", Extends: "b"},
				{Name: "b", Extends: "c"},
				{Name: "c", Extends: "a"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ApplyExtends(tt.projects[0], tt.projects)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExtendsCycle))
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestApplyExtends_MissingTarget(t *testing.T) {
	t.Parallel()
	child := ProjectConfig{Name: "child", Extends: "ghost"}

	_, err := ApplyExtends(child, []ProjectConfig{child})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtendsNotFound))
	assert.Contains(t, err.Error(), "'ghost'")
	assert.Contains(t, err.Error(), "projects[child].extends")
}

func TestApplyExtends_TooDeep(t *testing.T) {
	t.Parallel()
	var all []ProjectConfig
	for i := 0; i <= MaxExtendsDepth+1; i++ {
		p := ProjectConfig{Name: fmt.Sprintf("p%d", i)}
		if i <= MaxExtendsDepth {
			p.Extends = fmt.Sprintf("p%d", i+1)
		}
		all = append(all, p)
	}

	_, err := ApplyExtends(all[0], all)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtendsTooDeep))
}

func TestApplyExtends_MaxDepthAllowed(t *testing.T) {
	t.Parallel()
	var all []ProjectConfig
	for i := 0; i < MaxExtendsDepth; i++ {
		p := ProjectConfig{Name: fmt.Sprintf("p%d", i)}
		if i < MaxExtendsDepth-1 {
			p.Extends = fmt.Sprintf("p%d", i+1)
		}
		all = append(all, p)
	}
	all[len(all)-1].OutputPath = "dist/deep"

	got, err := ApplyExtends(all[0], all)
	require.NoError(t, err)
	assert.Equal(t, "dist/deep", got.OutputPath)
}

func TestMergeBuildAction_EmptyTopKeepsBase(t *testing.T) {
	t.Parallel()
	base := BuildAction{
		OutputPath: "dist",
		Copy:       &CopySetting{Enabled: true},
		Style:      &StyleOptions{IncludePaths: []string{"scss"}},
	}
	got := MergeBuildAction(base, BuildAction{})
	if diff := cmp.Diff(base, got); diff != "" {
		t.Errorf("MergeBuildAction mismatch (-want +got):\n%s", diff)
	}
}
