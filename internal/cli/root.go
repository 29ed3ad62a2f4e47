package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/Aakash-Pandya/lib-tools/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool
)

// rootCmd is the base command for lib-tools.
var rootCmd = &cobra.Command{
	Use:   "lib-tools",
	Short: "Build planner for JavaScript and TypeScript library packages",
	Long: `lib-tools reads a libconfig.json workspace document and derives the build
plan of every library project in it: output locations, clean and copy steps,
style compilations, TypeScript transpilations, bundles and the package.json
entry points they produce.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: persistentPreRun,
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	// Check env vars for flags not explicitly set on command line.
	if !cmd.Flags().Changed("verbose") && os.Getenv("LIBTOOLS_VERBOSE") != "" {
		flagVerbose = true
	}
	if !cmd.Flags().Changed("quiet") && os.Getenv("LIBTOOLS_QUIET") != "" {
		flagQuiet = true
	}
	if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("LIBTOOLS_NO_COLOR") != "") {
		flagNoColor = true
	}

	jsonFormat := os.Getenv("LIBTOOLS_LOG_FORMAT") == "json"
	logging.Setup(flagVerbose, flagQuiet, jsonFormat)

	if flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if flagDir != "" {
		if err := os.Chdir(flagDir); err != nil {
			return fmt.Errorf("changing directory to %s: %w", flagDir, err)
		}
	}

	return nil
}

func init() {
	registerPersistentFlags(rootCmd, true)
}

// registerPersistentFlags declares the global flags on cmd. When bind is set
// they write to the package-level variables.
func registerPersistentFlags(cmd *cobra.Command, bind bool) {
	const (
		verboseUsage = "Enable verbose (debug) output (env: LIBTOOLS_VERBOSE)"
		quietUsage   = "Suppress all output except errors (env: LIBTOOLS_QUIET)"
		configUsage  = "Path to libtools.toml settings file"
		dirUsage     = "Override working directory"
		noColorUsage = "Disable colored output (env: LIBTOOLS_NO_COLOR, NO_COLOR)"
	)
	f := cmd.PersistentFlags()
	if bind {
		f.BoolVarP(&flagVerbose, "verbose", "v", false, verboseUsage)
		f.BoolVarP(&flagQuiet, "quiet", "q", false, quietUsage)
		f.StringVar(&flagConfig, "config", "", configUsage)
		f.StringVar(&flagDir, "dir", "", dirUsage)
		f.BoolVar(&flagNoColor, "no-color", false, noColorUsage)
		return
	}
	f.BoolP("verbose", "v", false, verboseUsage)
	f.BoolP("quiet", "q", false, quietUsage)
	f.String("config", "", configUsage)
	f.String("dir", "", dirUsage)
	f.Bool("no-color", false, noColorUsage)
}

// Execute runs the root command with ctx and returns the exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator and man page generator. The
// persistent flags are registered on local variables so generators can use
// the command concurrently.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	registerPersistentFlags(cmd, false)

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
