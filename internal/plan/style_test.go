package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyle_Plan(t *testing.T) {
	t.Parallel()
	w := newWorkspace(t)
	w.file("packages/core/package.json", `{"name": "@scope/core"}`)

	p := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "style": {
		"sourceMapContents": false,
		"minify": {"level": 2},
		"includePaths": ["styles/partials"],
		"entries": [
			{"input": "styles/theme.scss"},
			{"input": "styles/dark.scss", "output": "themes/", "sourceMap": false, "vendorPrefixes": false, "includePaths": []},
			{"input": "styles/print.scss", "output": "css/printable.css", "minify": false, "vendorPrefixes": {"grid": "autoplace"}}
		]
	}}]}`, BuildOptions{})

	out := w.path("dist/packages/@scope/core")
	require.Len(t, p.Styles, 3)

	theme := p.Styles[0]
	assert.Equal(t, w.path("packages/core/styles/theme.scss"), theme.Input)
	assert.Equal(t, out+"/theme.css", theme.Output)
	assert.True(t, theme.SourceMap)
	assert.False(t, theme.SourceMapContents)
	assert.True(t, theme.VendorPrefixes)
	assert.Nil(t, theme.VendorPrefixOptions)
	assert.True(t, theme.Minify)
	assert.Equal(t, map[string]any{"level": float64(2)}, theme.MinifyOptions)
	assert.Equal(t, []string{w.path("packages/core/styles/partials")}, theme.IncludePaths)
	assert.True(t, theme.AddToPackageManifest)

	dark := p.Styles[1]
	assert.Equal(t, out+"/themes/dark.css", dark.Output)
	assert.False(t, dark.SourceMap)
	assert.False(t, dark.VendorPrefixes)
	assert.Empty(t, dark.IncludePaths)

	printable := p.Styles[2]
	assert.Equal(t, out+"/css/printable.css", printable.Output)
	assert.False(t, printable.Minify)
	assert.Nil(t, printable.MinifyOptions)
	assert.True(t, printable.VendorPrefixes)
	assert.Equal(t, map[string]any{"grid": "autoplace"}, printable.VendorPrefixOptions)
}

func TestStyle_None(t *testing.T) {
	t.Parallel()
	w := newWorkspace(t)
	w.file("packages/core/package.json", `{"name": "core"}`)

	p := w.planOne(`{"projects": [{"name": "core", "root": "packages/core", "style": {"entries": []}}]}`, BuildOptions{})
	assert.Empty(t, p.Styles)
}

func TestStyleOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		output string
		want   string
	}{
		{output: "", want: "/out/main.css"},
		{output: "main.min.css", want: "/out/main.min.css"},
		{output: "css", want: "/out/css/main.css"},
		{output: "css/", want: "/out/css/main.css"},
		{output: "/abs/site.css", want: "/abs/site.css"},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			assert.Equal(t, tt.want, styleOutput("/out", "/src/styles/main.scss", tt.output))
		})
	}
}
