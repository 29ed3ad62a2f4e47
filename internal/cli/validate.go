package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aakash-Pandya/lib-tools/internal/config"
	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/plan"
	"github.com/Aakash-Pandya/lib-tools/internal/tsconfig"
)

var validateFlagDeep bool

// validateCmd implements "lib-tools validate [libconfig.json]".
var validateCmd = &cobra.Command{
	Use:   "validate [libconfig.json]",
	Short: "Validate a libconfig.json document and report every issue",
	Long: `Check a libconfig.json document against the configuration schema and the
semantic rules the schema cannot express, and print every error and warning.

With --deep every project is also planned, so problems that only show up while
deriving a plan (missing tsconfig files, output paths outside the workspace,
unknown script targets) are reported as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFlagDeep, "deep", false, "Also derive every project's plan and report failures")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	overrides := &config.CLIOverrides{}
	if len(args) > 0 {
		overrides.Config = &args[0]
	}
	rc, err := buildSettings(cmd, overrides)
	if err != nil {
		return err
	}
	path, err := documentPath(rc)
	if err != nil {
		return err
	}

	title := "Validation of " + path
	loader := libconfig.NewLoader()
	doc, err := loader.Load(path)
	if err != nil {
		printValidationResult(cmd, title, []reportIssue{{Error: true, Message: err.Error()}})
		return fmt.Errorf("%s is invalid", path)
	}

	issues := docIssuesOf(libconfig.Validate(doc.Config))

	if validateFlagDeep {
		reader, err := tsconfig.NewReader(tsconfig.DefaultCacheSize)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		results, err := plan.New(loader, reader).PlanAll(ctx, doc, plan.BuildOptions{
			Environment: rc.BuildEnvironment(),
			Concurrency: rc.Config.Build.Concurrency,
		})
		if err != nil {
			return err
		}
		for _, r := range plan.Failed(results) {
			issues = append(issues, reportIssue{
				Error:   true,
				Field:   fmt.Sprintf("projects[%d]", r.Index),
				Message: r.Err.Error(),
			})
		}
	}

	printValidationResult(cmd, title, issues)
	for _, issue := range issues {
		if issue.Error {
			return fmt.Errorf("%s is invalid", path)
		}
	}
	return nil
}

func docIssuesOf(vr *libconfig.ValidationResult) []reportIssue {
	out := make([]reportIssue, 0, len(vr.Issues))
	for _, issue := range vr.Issues {
		out = append(out, reportIssue{
			Error:   issue.Severity == libconfig.SeverityError,
			Field:   issue.Field,
			Message: issue.Message,
		})
	}
	return out
}
