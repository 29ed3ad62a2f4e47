package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aakash-Pandya/lib-tools/internal/config"
	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
)

// Flag values for the init subcommand.
var (
	initFlagName    string
	initFlagPackage string
	initFlagRoot    string
	initFlagForce   bool
)

// initCmd implements "lib-tools init [template]".
var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "Create a starter libconfig.json and libtools.toml",
	Long: `Write a starter libconfig.json and libtools.toml into the working directory
from an embedded template. Existing files are preserved unless --force is
supplied.

Templates:
  library   one project transpiled with its tsconfig defaults
  bundled   esm2015 and esm5 transpilations plus ESM and UMD bundles

Examples:
  lib-tools init
  lib-tools init bundled --name core --package @acme/core --root packages/core`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initFlagName, "name", "n", "", "Project name (defaults to the last segment of --root or the directory name)")
	f.StringVar(&initFlagPackage, "package", "", "npm package name (defaults to the project name)")
	f.StringVar(&initFlagRoot, "root", ".", "Project root relative to the workspace")
	f.BoolVar(&initFlagForce, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	templateName := "library"
	if len(args) > 0 {
		templateName = args[0]
	}
	if !config.TemplateExists(templateName) {
		available, err := config.ListTemplates()
		if err != nil {
			return fmt.Errorf("listing available templates: %w", err)
		}
		return fmt.Errorf("template %q not found; available templates: %s",
			templateName, strings.Join(available, ", "))
	}

	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	root := filepath.ToSlash(filepath.Clean(initFlagRoot))
	if filepath.IsAbs(initFlagRoot) || root == ".." || strings.HasPrefix(root, "../") {
		return fmt.Errorf("invalid project root %q: must be inside the workspace", initFlagRoot)
	}

	name := initFlagName
	if name == "" {
		name = filepath.Base(filepath.FromSlash(root))
		if root == "." {
			name = filepath.Base(destDir)
		}
	}
	pkg := initFlagPackage
	if pkg == "" {
		pkg = name
	}

	docPath := filepath.Join(destDir, libconfig.ConfigFileName)
	if _, statErr := os.Stat(docPath); statErr == nil && !initFlagForce {
		return fmt.Errorf("%s already exists in %s; use --force to overwrite", libconfig.ConfigFileName, destDir)
	}

	created, err := config.RenderTemplate(templateName, destDir, config.TemplateVars{
		ProjectName: name,
		PackageName: pkg,
		Root:        root,
	}, initFlagForce)
	if err != nil {
		return fmt.Errorf("rendering template %q: %w", templateName, err)
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Initialized project %q from template %q\n\n", name, templateName)
	if len(created) > 0 {
		fmt.Fprintln(out, "Created files:")
		for _, f := range created {
			rel, relErr := filepath.Rel(destDir, f)
			if relErr != nil {
				rel = f
			}
			fmt.Fprintf(out, "  %s\n", rel)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Review %s\n", docPath)
	fmt.Fprintln(out, "  2. Run: lib-tools validate --deep")
	fmt.Fprintln(out, "  3. Run: lib-tools plan")
	return nil
}
