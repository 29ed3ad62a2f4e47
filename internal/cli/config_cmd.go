package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Aakash-Pandya/lib-tools/internal/config"
)

// configCmd is the parent "config" namespace command. It has no action of its
// own -- it groups debug and validate subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Settings management commands",
	Long:  "Inspect, validate, and debug lib-tools settings (libtools.toml).",
	// RunE shows help when invoked with no subcommand.
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configDebugCmd implements "lib-tools config debug".
// It prints the fully-resolved settings with source annotations.
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved settings with source annotations",
	Long: `Display the fully-resolved settings showing each value and the source
it came from: cli flag, environment variable, settings file, env file, or default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadAndResolveConfig(nil)
		if err != nil {
			return err
		}
		if err := resolved.LoadEnvFile(); err != nil {
			return err
		}
		printResolvedConfig(cmd, resolved)
		return nil
	},
}

// configValidateCmd implements "lib-tools config validate".
// It validates the resolved settings and reports all errors and warnings.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate settings and report issues",
	Long:  "Check libtools.toml and the resolved settings for errors and warnings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadAndResolveConfig(nil)
		if err != nil {
			return err
		}
		result := config.Validate(resolved.Config, meta)
		printValidationResult(cmd, "Settings Validation", issuesOf(result))
		if result.HasErrors() {
			return fmt.Errorf("settings have %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDebugCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

// loadAndResolveConfig loads and resolves the settings from all sources
// (file, env, CLI flags). It returns the resolved settings, the TOML metadata
// (nil when no file was found), and any loading error.
//
// When flagConfig is set, that path is used directly. Otherwise,
// config.FindConfigFile searches upward from the current directory.
func loadAndResolveConfig(overrides *config.CLIOverrides) (*config.ResolvedConfig, *toml.MetaData, error) {
	var (
		fileCfg *config.Config
		meta    *toml.MetaData
		cfgPath = flagConfig
	)

	if cfgPath == "" {
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, nil, fmt.Errorf("finding settings file: %w", err)
		}
		cfgPath = found
	}
	if cfgPath != "" {
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading settings: %w", err)
		}
		fileCfg = fc
		meta = &md
	}

	resolved := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, overrides)
	resolved.Path = cfgPath

	return resolved, meta, nil
}

// ---- Lipgloss styles --------------------------------------------------------

// sourceStyle returns a lipgloss style for a given ConfigSource.
// When --no-color is active, lipgloss automatically strips ANSI because
// the root PersistentPreRunE sets the color profile to Ascii.
func sourceStyle(src config.ConfigSource) lipgloss.Style {
	switch src {
	case config.SourceFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // bright blue
	case config.SourceEnv:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // bright yellow
	case config.SourceCLI:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // bright red
	case config.SourceEnvFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // bright magenta
	default: // SourceDefault
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // bright green
	}
}

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSeparator = lipgloss.NewStyle()
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleErrorLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
)

// ---- printResolvedConfig ----------------------------------------------------

const fieldWidth = 24 // column width for field names

// printResolvedConfig writes the formatted resolved configuration to cmd's
// output writer (stdout by default).
func printResolvedConfig(cmd *cobra.Command, rc *config.ResolvedConfig) {
	out := cmd.OutOrStdout()

	header := styleHeader.Render("Settings Debug")
	sep := styleSeparator.Render(strings.Repeat("=", len("Settings Debug")))
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out)

	if rc.Path != "" {
		fmt.Fprintf(out, "Settings file: %s\n", rc.Path)
	} else {
		fmt.Fprintln(out, "Settings file: none found")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, styleSection.Render("[build]"))
	b := rc.Config.Build
	printField(out, "config", fmtStr(b.Config), rc.Sources["build.config"])
	printField(out, "log_level", fmtStr(b.LogLevel), rc.Sources["build.log_level"])
	printField(out, "concurrency", strconv.Itoa(b.Concurrency), rc.Sources["build.concurrency"])
	printField(out, "filter", fmtSlice(b.Filter), rc.Sources["build.filter"])
	printField(out, "env_file", fmtStr(b.EnvFile), rc.Sources["build.env_file"])
	printField(out, "prod", strconv.FormatBool(b.Prod), rc.Sources["build.prod"])
	printField(out, "format", fmtStr(b.Format), rc.Sources["build.format"])
	fmt.Fprintln(out)

	if len(rc.Config.Environment) > 0 {
		fmt.Fprintln(out, styleSection.Render("[environment]"))
		names := make([]string, 0, len(rc.Config.Environment))
		for n := range rc.Config.Environment {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, name := range names {
			printField(out, name, fmtValue(rc.Config.Environment[name]), rc.Sources["environment."+name])
		}
		fmt.Fprintln(out)
	}
}

// printField writes a single key = value (source: ...) line.
func printField(out io.Writer, name, value string, src config.ConfigSource) {
	// Left-pad the field name to fieldWidth.
	padded := fmt.Sprintf("  %-*s", fieldWidth, name)
	srcLabel := sourceStyle(src).Render(fmt.Sprintf("(source: %s)", src))
	line := fmt.Sprintf("%s = %-40s %s\n", padded, value, srcLabel)
	fmt.Fprint(out, line)
}

// fmtStr formats a string value for display (quoted).
func fmtStr(s string) string {
	return fmt.Sprintf("%q", s)
}

// fmtValue formats an environment value: strings quoted, everything else as is.
func fmtValue(v any) string {
	if s, ok := v.(string); ok {
		return fmtStr(s)
	}
	return fmt.Sprint(v)
}

// fmtSlice formats a string slice for display.
func fmtSlice(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ---- printValidationResult --------------------------------------------------

// reportIssue is a validation finding from either the settings or the
// libconfig.json validator.
type reportIssue struct {
	Error   bool
	Field   string
	Message string
}

func issuesOf(vr *config.ValidationResult) []reportIssue {
	out := make([]reportIssue, 0, len(vr.Issues))
	for _, issue := range vr.Issues {
		out = append(out, reportIssue{
			Error:   issue.Severity == config.SeverityError,
			Field:   issue.Field,
			Message: issue.Message,
		})
	}
	return out
}

// printValidationResult writes the formatted validation report to cmd's
// output writer.
func printValidationResult(cmd *cobra.Command, title string, issues []reportIssue) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, styleHeader.Render(title))
	fmt.Fprintln(out, styleSeparator.Render(strings.Repeat("=", len(title))))
	fmt.Fprintln(out)

	var errs, warns []reportIssue
	for _, issue := range issues {
		if issue.Error {
			errs = append(errs, issue)
		} else {
			warns = append(warns, issue)
		}
	}

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	printIssues(out, styleErrorLbl.Render("Errors:"), errs)
	printIssues(out, styleWarnLbl.Render("Warnings:"), warns)

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}

func printIssues(out io.Writer, label string, issues []reportIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(out, label)
	for _, issue := range issues {
		if issue.Field == "" {
			fmt.Fprintf(out, "  %s\n", issue.Message)
			continue
		}
		fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
	}
	fmt.Fprintln(out)
}
