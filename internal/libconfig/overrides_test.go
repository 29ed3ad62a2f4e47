package libconfig

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverrides_DeclaredOrder(t *testing.T) {
	t.Parallel()
	p := ProjectConfig{
		Name:        "core",
		BuildAction: BuildAction{OutputPath: "dist/default"},
		EnvOverrides: EnvOverrides{
			{Name: "prod", Action: BuildAction{OutputPath: "dist/prod", Copy: &CopySetting{}}},
			{Name: "ci", Action: BuildAction{OutputPath: "dist/ci"}},
			{Name: "never", Action: BuildAction{OutputPath: "dist/never"}},
		},
	}

	got, applied := ApplyEnvOverrides(p, Environment{"prod": true, "ci": true})
	assert.Equal(t, []string{"prod", "ci"}, applied)
	assert.Equal(t, "dist/ci", got.OutputPath)
	require.NotNil(t, got.Copy)
	assert.False(t, got.Copy.Enabled)
	// The override table stays on the result and the input is untouched.
	assert.Len(t, got.EnvOverrides, 3)
	assert.Equal(t, "dist/default", p.OutputPath)
}

func TestApplyEnvOverrides_NoMatchIsIdentity(t *testing.T) {
	t.Parallel()
	p := ProjectConfig{
		Name:         "core",
		BuildAction:  BuildAction{OutputPath: "dist"},
		EnvOverrides: EnvOverrides{{Name: "prod", Action: BuildAction{OutputPath: "dist/prod"}}},
	}

	got, applied := ApplyEnvOverrides(p, Environment{"prod": false, "dev": true})
	assert.Empty(t, applied)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("ApplyEnvOverrides mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnvOverrides_ZeroOverridesRoundTrip(t *testing.T) {
	t.Parallel()
	var p ProjectConfig
	require.NoError(t, json.Unmarshal([]byte(`{"name":"core","outputPath":"dist","envOverrides":{}}`), &p))

	got, applied := ApplyEnvOverrides(p, Environment{"prod": true})
	assert.Empty(t, applied)

	before, err := json.Marshal(p)
	require.NoError(t, err)
	after, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestResolve_ExtendsThenOverrides(t *testing.T) {
	t.Parallel()
	base := ProjectConfig{
		Name:         "base",
		BuildAction:  BuildAction{OutputPath: "dist/base"},
		EnvOverrides: EnvOverrides{{Name: "prod", Action: BuildAction{OutputPath: "dist/base-prod"}}},
	}
	child := ProjectConfig{Name: "child", Root: "packages/child", Extends: "base"}

	got, applied, err := Resolve(child, []ProjectConfig{base, child}, NormalizeEnvironment(map[string]any{"production": true}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"prod"}, applied)
	assert.Equal(t, "dist/base-prod", got.OutputPath)
	assert.Equal(t, "packages/child", got.Root)
}

func TestResolve_PropagatesExtendsError(t *testing.T) {
	t.Parallel()
	child := ProjectConfig{Name: "child", Extends: "missing"}
	_, _, err := Resolve(child, []ProjectConfig{child}, Environment{})
	assert.True(t, errors.Is(err, ErrExtendsNotFound))
}
