package config

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"
)

//go:embed all:templates
var templateFS embed.FS

// templatesRoot is the top-level directory in the embedded FS that contains
// all workspace templates.
const templatesRoot = "templates"

// TemplateVars holds variables available for text/template substitution when
// rendering .tmpl files. Non-template files are copied as-is.
type TemplateVars struct {
	// ProjectName is the libconfig.json project name (e.g., "core").
	ProjectName string
	// PackageName is the npm package name (e.g., "@scope/core").
	PackageName string
	// Root is the project root relative to the workspace (e.g., "packages/core").
	Root string
}

// ListTemplates returns the names of all available workspace templates by
// reading the top-level directories from the embedded filesystem.
func ListTemplates() ([]string, error) {
	entries, err := templateFS.ReadDir(templatesRoot)
	if err != nil {
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// TemplateExists reports whether a template with the given name exists in the
// embedded filesystem.
func TemplateExists(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return false
	}
	info, err := fs.Stat(templateFS, templatesRoot+"/"+name)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RenderTemplate writes the named template's files into destDir. Files whose
// names end in ".tmpl" are processed with text/template using vars; all other
// files are copied byte-for-byte. The ".tmpl" extension is stripped from the
// output filename. Existing files are skipped unless force is set.
//
// Returns the absolute paths of the files written.
func RenderTemplate(name string, destDir string, vars TemplateVars, force bool) ([]string, error) {
	if !TemplateExists(name) {
		return nil, fmt.Errorf("template %q not found", name)
	}
	destDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	templateDir := templatesRoot + "/" + name
	var created []string

	walkErr := fs.WalkDir(templateFS, templateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking template %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}

		relPath := strings.TrimPrefix(path, templateDir+"/")
		destRel, isTmpl := strings.CutSuffix(relPath, ".tmpl")
		destFile := filepath.Join(destDir, filepath.FromSlash(destRel))

		if _, statErr := os.Stat(destFile); statErr == nil {
			if !force {
				log.Debug("skipping existing file", "path", destFile)
				return nil
			}
			log.Debug("overwriting existing file", "path", destFile)
		}

		if mkdirErr := os.MkdirAll(filepath.Dir(destFile), 0o755); mkdirErr != nil {
			return fmt.Errorf("creating directory for %s: %w", destFile, mkdirErr)
		}

		content, readErr := templateFS.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading embedded file %s: %w", path, readErr)
		}

		output := content
		if isTmpl {
			tmpl, parseErr := template.New(d.Name()).Parse(string(content))
			if parseErr != nil {
				return fmt.Errorf("parsing template %s: %w", path, parseErr)
			}
			var buf bytes.Buffer
			if execErr := tmpl.Execute(&buf, vars); execErr != nil {
				return fmt.Errorf("executing template %s: %w", path, execErr)
			}
			output = buf.Bytes()
		}

		if writeErr := os.WriteFile(destFile, output, 0o644); writeErr != nil {
			return fmt.Errorf("writing file %s: %w", destFile, writeErr)
		}

		log.Debug("created template file", "path", destFile)
		created = append(created, destFile)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return created, nil
}
