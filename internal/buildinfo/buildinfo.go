package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Info holds structured build information suitable for JSON serialization.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetInfo returns the current build information. A binary built with
// "go install module@version" carries no ldflags, so its module version is
// used instead of "dev".
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
	if info.Version == "dev" {
		if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = trimV(bi.Main.Version)
		}
	}
	return info
}

// String returns a human-readable version string.
// Example: "lib-tools v2.0.0 (commit: a1b2c3d, built: 2026-02-17T10:00:00Z)"
func (i Info) String() string {
	return fmt.Sprintf("lib-tools v%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}

func trimV(v string) string {
	if len(v) > 1 && v[0] == 'v' {
		return v[1:]
	}
	return v
}
