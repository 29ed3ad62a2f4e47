package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Normalize returns the cleaned form of p. Empty input stays empty.
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// Resolve joins p onto base unless p is already absolute, then cleans the
// result. It mirrors path.resolve(base, p) for the two-argument case.
func Resolve(base, p string) string {
	if p == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// IsSamePaths reports whether a and b name the same location after cleaning.
// Comparison is case-insensitive on Windows.
func IsSamePaths(a, b string) bool {
	a, b = Normalize(a), Normalize(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// IsInFolder reports whether child lies strictly inside parent. A path is not
// inside itself.
func IsInFolder(parent, child string) bool {
	rel, err := filepath.Rel(Normalize(parent), Normalize(child))
	if err != nil {
		return false
	}
	if rel == "." || rel == "" {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// NormalizeRelativePath converts p to forward-slash form and strips a leading
// "./" and any trailing slash. "." becomes the empty string.
func NormalizeRelativePath(p string) string {
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = strings.TrimRight(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// Relative returns the forward-slash path of target relative to base.
func Relative(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	return NormalizeRelativePath(rel), nil
}

// Exists reports whether a file or directory exists at p.
func Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// FindUp searches for the first existing entry of names, starting at startDir
// and ascending toward endDir (inclusive). Every name is probed at a directory
// level before moving to the parent, so a less preferred name in a deeper
// directory wins over a more preferred name higher up. Absolute names are
// probed as-is. Returns "" when nothing matches.
func FindUp(names []string, startDir, endDir string) string {
	dir := Normalize(startDir)
	end := Normalize(endDir)

	for {
		for _, name := range names {
			candidate := name
			if !filepath.IsAbs(name) {
				candidate = filepath.Join(dir, name)
			}
			if Exists(candidate) {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root.
			return ""
		}
		if !IsSamePaths(end, parent) && !IsInFolder(end, parent) {
			return ""
		}
		dir = parent
	}
}
