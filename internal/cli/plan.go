package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Aakash-Pandya/lib-tools/internal/config"
	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/plan"
	"github.com/Aakash-Pandya/lib-tools/internal/tsconfig"
)

var errNoProjects = errors.New("no project is available to build")

// envFlag collects repeatable --env key[=value] flags. A single value may
// hold a comma-separated list.
type envFlag struct {
	values map[string]any
	order  []string
}

var _ pflag.Value = (*envFlag)(nil)

func (f *envFlag) String() string {
	if f == nil || len(f.order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(f.order))
	for _, k := range f.order {
		switch v := f.values[k].(type) {
		case bool:
			if v {
				parts = append(parts, k)
			} else {
				parts = append(parts, k+"=false")
			}
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, ",")
}

func (f *envFlag) Set(s string) error {
	raw := libconfig.ParseEnvironmentString(s)
	if len(raw) == 0 {
		return fmt.Errorf("empty environment flag %q", s)
	}
	if f.values == nil {
		f.values = map[string]any{}
	}
	for _, part := range strings.Split(s, ",") {
		key, _, _ := strings.Cut(strings.TrimSpace(part), "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, seen := f.values[key]; !seen {
			f.order = append(f.order, key)
		}
		f.values[key] = raw[key]
	}
	return nil
}

func (f *envFlag) Type() string {
	return "key[=value]"
}

func (f *envFlag) reset() {
	f.values = nil
	f.order = nil
}

// Flag values for the plan subcommand.
var (
	planFlagProjects    []string
	planFlagEnv         envFlag
	planFlagEnvFile     string
	planFlagProd        bool
	planFlagFormat      string
	planFlagConcurrency int
)

// planCmd implements "lib-tools plan [libconfig.json]".
var planCmd = &cobra.Command{
	Use:   "plan [libconfig.json]",
	Short: "Derive and print the build plan of every project",
	Long: `Load a libconfig.json document, resolve extends and environment overrides
for each project and print the derived build plan.

When no document is given, build.config from libtools.toml is used, and
otherwise libconfig.json is searched upward from the working directory.

Projects are planned independently: a failing project is reported and its
siblings are still planned. The command exits with status 1 when any project
failed.

Examples:
  lib-tools plan
  lib-tools plan --prod --format json
  lib-tools plan -p core -p forms --env ci --env target=es5
  lib-tools plan packages/libconfig.json --env-file .env.build`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringArrayVarP(&planFlagProjects, "project", "p", nil, "Plan only the named project (repeatable)")
	f.Var(&planFlagEnv, "env", "Set a build environment flag, e.g. ci or target=es5 (repeatable)")
	f.StringVar(&planFlagEnvFile, "env-file", "", "Read build environment flags from a dotenv file")
	f.BoolVar(&planFlagProd, "prod", false, "Plan a production build (clears dev)")
	f.StringVar(&planFlagFormat, "format", "text", "Output format: text, json or yaml")
	f.IntVar(&planFlagConcurrency, "concurrency", 0, "Maximum projects planned at once (0: number of CPUs)")
	rootCmd.AddCommand(planCmd)
}

// planOverrides turns the flags the user actually set into settings overrides.
func planOverrides(cmd *cobra.Command, args []string) *config.CLIOverrides {
	o := &config.CLIOverrides{}
	f := cmd.Flags()
	if len(args) > 0 {
		o.Config = &args[0]
	}
	if f.Changed("project") {
		o.Filter = planFlagProjects
	}
	if f.Changed("env") {
		o.Environment = planFlagEnv.values
	}
	if f.Changed("env-file") {
		o.EnvFile = &planFlagEnvFile
	}
	if f.Changed("prod") {
		o.Prod = &planFlagProd
	}
	if f.Changed("format") {
		o.Format = &planFlagFormat
	}
	if f.Changed("concurrency") {
		o.Concurrency = &planFlagConcurrency
	}
	return o
}

// buildSettings resolves the settings for a planning run and reads the env
// file they name. Settings errors abort the run.
func buildSettings(cmd *cobra.Command, overrides *config.CLIOverrides) (*config.ResolvedConfig, error) {
	rc, _, err := loadAndResolveConfig(overrides)
	if err != nil {
		return nil, err
	}
	if vr := config.Validate(rc.Config, nil); vr.HasErrors() {
		printValidationResult(cmd, "Settings Validation", issuesOf(vr))
		return nil, fmt.Errorf("settings have %d error(s)", len(vr.Errors()))
	}
	if err := rc.LoadEnvFile(); err != nil {
		return nil, err
	}
	return rc, nil
}

// documentPath returns the libconfig.json to use: build.config when set,
// else the nearest libconfig.json above the working directory.
func documentPath(rc *config.ResolvedConfig) (string, error) {
	if p := rc.Config.Build.Config; p != "" {
		return p, nil
	}
	found, err := libconfig.FindConfigFile(".")
	if err != nil {
		return "", fmt.Errorf("finding %s: %w", libconfig.ConfigFileName, err)
	}
	if found == "" {
		return "", fmt.Errorf("no %s found in the working directory or its parents", libconfig.ConfigFileName)
	}
	return found, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	rc, err := buildSettings(cmd, planOverrides(cmd, args))
	if err != nil {
		return err
	}
	path, err := documentPath(rc)
	if err != nil {
		return err
	}

	reader, err := tsconfig.NewReader(tsconfig.DefaultCacheSize)
	if err != nil {
		return err
	}
	planner := plan.New(libconfig.NewLoader(), reader)

	opts := plan.BuildOptions{
		Environment: rc.BuildEnvironment(),
		Filter:      rc.Config.Build.Filter,
		Concurrency: rc.Config.Build.Concurrency,
	}
	if rc.Sources["build.log_level"] != config.SourceDefault {
		opts.LogLevel = rc.Config.Build.LogLevel
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, results, err := planner.PlanFile(ctx, path, opts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errNoProjects
	}

	if err := renderPlan(cmd.OutOrStdout(), rc.Config.Build.Format, results); err != nil {
		return err
	}

	if failed := plan.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d project(s) failed to plan", len(failed), len(results))
	}
	return nil
}

// projectReport is the serialized form of one planning result.
type projectReport struct {
	Name  string        `json:"name" yaml:"name"`
	Error string        `json:"error,omitempty" yaml:"error,omitempty"`
	Plan  *plan.Project `json:"plan,omitempty" yaml:"plan,omitempty"`
}

func reportsOf(results []plan.Result) []projectReport {
	reports := make([]projectReport, 0, len(results))
	for _, r := range results {
		rep := projectReport{Name: r.Name, Plan: r.Project}
		if rep.Name == "" && r.Project != nil {
			rep.Name = r.Project.PackageName
		}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		reports = append(reports, rep)
	}
	return reports
}

func renderPlan(out io.Writer, format string, results []plan.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reportsOf(results))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(reportsOf(results)); err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		return enc.Close()
	case "", "text":
		renderPlanText(out, results)
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

var (
	stylePlanTitle = lipgloss.NewStyle().Bold(true)
	styleFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleKey       = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderPlanText writes a human-readable summary of every result.
func renderPlanText(out io.Writer, results []plan.Result) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		name := r.Name
		if name == "" && r.Project != nil {
			name = r.Project.PackageName
		}
		if r.Err != nil {
			fmt.Fprintf(out, "%s %s\n", styleFailed.Render("FAILED"), stylePlanTitle.Render(name))
			fmt.Fprintf(out, "  %s\n", strings.ReplaceAll(r.Err.Error(), "\n", "\n  "))
			continue
		}
		renderProjectText(out, name, r.Project)
	}

	failed := len(plan.Failed(results))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d project(s) planned, %d failed\n", len(results)-failed, failed)
}

func renderProjectText(out io.Writer, name string, p *plan.Project) {
	fmt.Fprintf(out, "%s %s\n", stylePlanTitle.Render(name), styleMuted.Render(p.Fingerprint))
	field := func(key, value string) {
		fmt.Fprintf(out, "  %s %s\n", styleKey.Render(fmt.Sprintf("%-18s", key+":")), value)
	}

	field("package", p.PackageName)
	field("project root", p.ProjectRoot)
	field("output", p.OutputPath)
	if len(p.AppliedOverrides) > 0 {
		field("overrides", strings.Join(p.AppliedOverrides, ", "))
	}
	if p.Clean != nil {
		field("clean", fmt.Sprintf("outDir=%t cache=%t paths=%d", p.Clean.BeforeBuild.CleanOutDir,
			p.Clean.BeforeBuild.CleanCache, len(p.Clean.BeforeBuild.Paths)+len(p.Clean.AfterEmit.Paths)))
	}
	for _, a := range p.Copy {
		field("copy", a.From+" -> "+a.To)
	}
	for _, s := range p.Styles {
		field("style", s.Input+" -> "+s.Output)
	}
	for _, t := range p.Transpilations {
		field("transpile", fmt.Sprintf("[%d] %s -> %s (%s)", t.Index, t.TsConfigPath, t.OutDir, t.ScriptTarget))
	}
	for _, b := range p.Bundles {
		field("bundle", fmt.Sprintf("[%d] %s %s -> %s", b.Index, b.LibraryTarget, b.EntryFile, b.OutputFilePath))
	}

	fields := p.EntryPoints.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(k, fields[k])
	}
}
