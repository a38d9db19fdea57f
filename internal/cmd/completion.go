package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <bash|zsh|fish|powershell>",
	Short: "Generate shell completions",
	Long: `Generate shell completion scripts for git-stash-triage.

  Fish:       git-stash-triage completion fish | source
  Bash:       eval "$(git-stash-triage completion bash)"
  Zsh:        eval "$(git-stash-triage completion zsh)"
  PowerShell: git-stash-triage completion powershell | Out-String | Invoke-Expression`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCompletion(cmd.OutOrStdout(), args[0])
	},
}

// writeCompletion renders the completion script for shell.
func writeCompletion(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q (want bash, zsh, fish or powershell)", shell)
	}
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
