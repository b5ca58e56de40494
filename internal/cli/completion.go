package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand emits shell completion scripts via cobra's
// generators.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell.

Bash:
  $ source <(gwmap completion bash)

  # Persist across sessions (Linux):
  $ gwmap completion bash > /etc/bash_completion.d/gwmap
  # Persist across sessions (macOS with Homebrew):
  $ gwmap completion bash > $(brew --prefix)/etc/bash_completion.d/gwmap

Zsh:
  # Enable completion support once if your setup lacks it:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # Then install the script and open a new shell:
  $ gwmap completion zsh > "${fpath[1]}/_gwmap"

Fish:
  $ gwmap completion fish | source

  # Persist across sessions:
  $ gwmap completion fish > ~/.config/fish/completions/gwmap.fish

PowerShell:
  PS> gwmap completion powershell | Out-String | Invoke-Expression

  # Persist by sourcing the script from your profile:
  PS> gwmap completion powershell > gwmap.ps1
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
