package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts for lib-tools.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for lib-tools.

To install completions:

  Bash (Linux):
    lib-tools completion bash | sudo tee /etc/bash_completion.d/lib-tools > /dev/null

  Zsh:
    lib-tools completion zsh > "${fpath[1]}/_lib-tools"

  Fish:
    lib-tools completion fish > ~/.config/fish/completions/lib-tools.fish

  PowerShell:
    lib-tools completion powershell > lib-tools.ps1`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
