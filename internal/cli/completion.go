package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rustcap/pkg/config"
	"github.com/matzehuels/rustcap/pkg/publish"
)

var planFormats = []string{
	string(publish.FormatText),
	string(publish.FormatYAML),
	string(publish.FormatJSON),
	formatDOT,
	formatSVG,
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for rustcap. Besides subcommands and flags it
completes --format values and the default --root entries.

  $ source <(rustcap completion bash)
  $ rustcap completion zsh > "${fpath[1]}/_rustcap"
  $ rustcap completion fish > ~/.config/fish/completions/rustcap.fish
  PS> rustcap completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerFlagCompletions attaches value completions to the flags that take
// a fixed set of values, wherever a subcommand defines them.
func registerFlagCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", fixedValues(planFormats))
		}
		if cmd.Flags().Lookup(flagRoot) != nil {
			_ = cmd.RegisterFlagCompletionFunc(flagRoot, fixedValues(config.DefaultRoots))
		}
	}
}

func fixedValues(values []string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
