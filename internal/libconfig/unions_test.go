package libconfig

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggle_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantEnabled bool
		wantOptions bool
	}{
		{name: "true", input: `true`, wantEnabled: true},
		{name: "false", input: `false`},
		{name: "object", input: `{"entries":[{"target":"es5"}]}`, wantEnabled: true, wantOptions: true},
		{name: "empty object", input: `{}`, wantEnabled: true, wantOptions: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var tog Toggle[ScriptTranspilationOptions]
			require.NoError(t, json.Unmarshal([]byte(tt.input), &tog))
			assert.Equal(t, tt.wantEnabled, tog.Enabled)
			assert.Equal(t, tt.wantOptions, tog.Options != nil)
		})
	}
}

func TestToggle_RejectsWrongShape(t *testing.T) {
	t.Parallel()
	var tog Toggle[CleanOptions]
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &tog))
}

func TestCopySetting_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var off CopySetting
	require.NoError(t, json.Unmarshal([]byte(`false`), &off))
	assert.Equal(t, CopySetting{}, off)

	var list CopySetting
	require.NoError(t, json.Unmarshal([]byte(`["LICENSE", {"from": "docs/**", "to": "docs"}]`), &list))
	assert.True(t, list.Enabled)
	assert.Equal(t, []AssetEntry{{From: "LICENSE"}, {From: "docs/**", To: "docs"}}, list.Assets)

	var bad CopySetting
	assert.Error(t, json.Unmarshal([]byte(`{"from": "x"}`), &bad))
}

func TestExternals_SingleOrArray(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single string", input: `"rxjs"`, want: []string{"rxjs"}},
		{name: "single map", input: `{"zone.js": "Zone", "@angular/core": "ng.core"}`, want: []string{"@angular/core", "zone.js"}},
		{name: "array with duplicates", input: `["tslib", {"tslib": "tslib", "rxjs": "rxjs"}]`, want: []string{"tslib", "rxjs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var x Externals
			require.NoError(t, json.Unmarshal([]byte(tt.input), &x))
			assert.Equal(t, tt.want, x.Names())
		})
	}
}

func TestEnvOverrides_PreserveOrder(t *testing.T) {
	t.Parallel()

	input := `{"zeta": {"outputPath": "z"}, "alpha": {"copy": false}, "mid": {}}`
	var o EnvOverrides
	require.NoError(t, json.Unmarshal([]byte(input), &o))

	require.Len(t, o, 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, []string{o[0].Name, o[1].Name, o[2].Name})
	assert.Equal(t, "z", o[0].Action.OutputPath)
	require.NotNil(t, o[1].Action.Copy)
	assert.False(t, o[1].Action.Copy.Enabled)

	out, err := json.Marshal(o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta": {"outputPath": "z"}, "alpha": {"copy": false}, "mid": {}}`, string(out))
	assert.Less(t, strings.Index(string(out), "zeta"), strings.Index(string(out), "alpha"))
}

func TestEnvOverrides_Empty(t *testing.T) {
	t.Parallel()
	var o EnvOverrides
	require.NoError(t, json.Unmarshal([]byte(`{}`), &o))
	assert.Empty(t, o)

	out, err := json.Marshal(EnvOverrides{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestEnvOverrides_RejectsArray(t *testing.T) {
	t.Parallel()
	var o EnvOverrides
	assert.Error(t, json.Unmarshal([]byte(`[]`), &o))
}

func TestBoolValue(t *testing.T) {
	t.Parallel()
	yes, no := true, false
	assert.True(t, BoolValue(nil, true))
	assert.False(t, BoolValue(nil, false))
	assert.True(t, BoolValue(&yes, false))
	assert.False(t, BoolValue(&no, true))
}
