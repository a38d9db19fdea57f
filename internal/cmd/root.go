package cmd

import (
	"fmt"
	"os"

	"github.com/mvwi/stash-triage/internal/logging"
	"github.com/mvwi/stash-triage/internal/ui"
	"github.com/mvwi/stash-triage/internal/update"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	flagDebug   bool
	flagStat    bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "git-stash-triage",
	Short: "Triage git stash entries one at a time",
	Long: `git-stash-triage - walk your stash list and decide what to keep

Shows each stash, newest first, and asks what to do with it:

  d  drop this stash
  b  commit this stash to a separate branch and delete it
  s  take no action on this stash
  a  apply the stash and take no further action
  q  quit; leave the remaining stashes alone
  ?  print help

Installed on PATH it also runs as 'git stash-triage'.

Configuration:
  Add .stash-triage.toml to your repo root (or ~/.config/stash-triage/config.toml)
  to set branch_prefix, confirm_unapplied_drop, show_stat and color.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := logging.Initialize(flagDebug)
		if err != nil {
			return err
		}
		if path != "" && flagDebug {
			fmt.Fprintln(os.Stderr, ui.Dim("Debug log: "+path))
		}
		update.CheckInBackground()
		return nil
	},
	RunE: runTriage,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	update.PrintNoticeIfNewer(Version)
	if err != nil {
		ui.ErrorTo(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("git-stash-triage version {{.Version}}\n")
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "write a debug log")
	rootCmd.Flags().BoolVar(&flagStat, "stat", false, "show a diffstat instead of the full patch")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}
