package buildinfo

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "unknown", Commit)
	assert.Equal(t, "unknown", Date)
}

func stubBuildInfo(t *testing.T, version string, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		if !ok {
			return nil, false
		}
		return &debug.BuildInfo{Main: debug.Module{Path: "github.com/Aakash-Pandya/lib-tools", Version: version}}, true
	}
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestGetInfo(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		moduleVer   string
		hasModule   bool
		wantVersion string
	}{
		{name: "no build info", version: "dev", wantVersion: "dev"},
		{name: "devel module", version: "dev", moduleVer: "(devel)", hasModule: true, wantVersion: "dev"},
		{name: "installed module", version: "dev", moduleVer: "v1.4.0", hasModule: true, wantVersion: "1.4.0"},
		{name: "ldflags win", version: "2.0.0", moduleVer: "v1.4.0", hasModule: true, wantVersion: "2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubBuildInfo(t, tt.moduleVer, tt.hasModule)
			orig := Version
			Version = tt.version
			t.Cleanup(func() { Version = orig })

			info := GetInfo()
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, Commit, info.Commit)
			assert.Equal(t, Date, info.Date)
			assert.Equal(t, runtime.Version(), info.GoVersion)
		})
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "default values",
			info: Info{Version: "dev", Commit: "unknown", Date: "unknown"},
			want: "lib-tools vdev (commit: unknown, built: unknown)",
		},
		{
			name: "release",
			info: Info{Version: "2.0.0", Commit: "a1b2c3d", Date: "2026-02-17T10:00:00Z", GoVersion: "go1.24.2"},
			want: "lib-tools v2.0.0 (commit: a1b2c3d, built: 2026-02-17T10:00:00Z)",
		},
		{
			name: "git describe",
			info: Info{Version: "2.0.0-14-gabcdef0-dirty", Commit: "abcdef0", Date: "2026-01-15T08:30:00Z"},
			want: "lib-tools v2.0.0-14-gabcdef0-dirty (commit: abcdef0, built: 2026-01-15T08:30:00Z)",
		},
		{
			name: "zero value",
			want: "lib-tools v (commit: , built: )",
		},
		{
			name: "long version",
			info: Info{Version: strings.Repeat("a", 100), Commit: "abc1234", Date: "2026-02-17"},
			want: "lib-tools v" + strings.Repeat("a", 100) + " (commit: abc1234, built: 2026-02-17)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestInfoJSON(t *testing.T) {
	t.Parallel()

	info := Info{Version: "1.0.0", Commit: "abc1234", Date: "2026-02-17T10:00:00Z", GoVersion: "go1.24.2"}
	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0","commit":"abc1234","date":"2026-02-17T10:00:00Z","goVersion":"go1.24.2"}`, string(data))

	var got Info
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, info, got)
}

func TestTrimV(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1.2.3", trimV("v1.2.3"))
	assert.Equal(t, "1.2.3", trimV("1.2.3"))
	assert.Equal(t, "v", trimV("v"))
	assert.Equal(t, "", trimV(""))
}

func BenchmarkInfoString(b *testing.B) {
	info := Info{Version: "2.0.0", Commit: "a1b2c3d", Date: "2026-02-17T10:00:00Z"}
	for b.Loop() {
		_ = info.String()
	}
}
