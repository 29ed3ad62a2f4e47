package libconfig

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeConfig(t *testing.T, doc string) *LibConfig {
	t.Helper()
	var cfg LibConfig
	require.NoError(t, json.Unmarshal([]byte(doc), &cfg))
	return &cfg
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         string
		wantFields  []string
		wantInvalid bool
		wantCause   error
	}{
		{
			name:        "no projects",
			doc:         `{"projects": []}`,
			wantFields:  []string{""},
			wantInvalid: true,
		},
		{
			name:       "duplicate names",
			doc:        `{"projects": [{"name": "core"}, {"name": "forms"}, {"name": "core"}]}`,
			wantFields: []string{"projects[2].name"},
			wantCause:  ErrDuplicateName,
		},
		{
			name:       "bad copy glob",
			doc:        `{"projects": [{"name": "core", "copy": [{"from": "assets/[a-", "exclude": ["ok/**", "bad/{x"]}]}]}`,
			wantFields: []string{"projects[core].copy[0].from", "projects[core].copy[0].exclude[1]"},
			wantCause:  doublestar.ErrBadPattern,
		},
		{
			name: "bad clean glob in override",
			doc: `{"projects": [{"name": "core", "envOverrides": {"prod": {
				"clean": {"afterEmit": {"paths": ["ok", "[z-"]}}
			}}}]}`,
			wantFields: []string{"projects[core].envOverrides.prod.clean.afterEmit.paths[1]"},
			wantCause:  doublestar.ErrBadPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vr := Validate(decodeConfig(t, tt.doc))
			require.True(t, vr.HasErrors())

			var fields []string
			for _, issue := range vr.Errors() {
				fields = append(fields, issue.Field)
			}
			assert.Equal(t, tt.wantFields, fields)

			err := vr.Err()
			require.Error(t, err)
			var invalid *InvalidConfigError
			var cfgErr *ConfigError
			if tt.wantInvalid {
				assert.True(t, errors.As(err, &invalid))
			} else {
				assert.True(t, errors.As(err, &cfgErr))
			}
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestValidate_Clean(t *testing.T) {
	t.Parallel()
	vr := Validate(decodeConfig(t, `{"projects": [
		{"name": "core", "root": "packages/core", "copy": ["README.md", {"from": "assets/**/*.{png,svg}"}]},
		{"name": "forms", "extends": "core", "clean": {"beforeBuild": {"paths": ["esm5"], "excludes": ["**/*.map"]}}}
	]}`))
	assert.Empty(t, vr.Issues)
	assert.NoError(t, vr.Err())
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()
	vr := Validate(nil)
	require.Len(t, vr.Errors(), 1)
	assert.Contains(t, vr.Errors()[0].Message, "No project is available to build")
}
