package cmd

import (
	"fmt"
	"os"

	"github.com/mvwi/stash-triage/internal/git"
	"github.com/mvwi/stash-triage/internal/logging"
	"github.com/mvwi/stash-triage/internal/stash"
	"github.com/mvwi/stash-triage/internal/triage"
	"github.com/mvwi/stash-triage/internal/ui"
	"github.com/spf13/cobra"
)

func runTriage(cmd *cobra.Command, args []string) error {
	ctx, err := newContext()
	if err != nil {
		return err
	}

	mode := ui.ColorMode(ctx.Config.Color)
	if flagNoColor {
		mode = ui.ColorNever
	}
	ui.SetColorMode(mode)

	// Branching commits the stash on top of HEAD, so local changes would leak in.
	if st, err := git.TreeStatusIn(ctx.Repo.Root); err == nil && st.Dirty() {
		ui.Warn("Can't back up stashes as branches with local changes (%s).", st)
		fmt.Println("   Resolve local changes to back up stashes as branches.")
		fmt.Println()
	}

	backend := stash.NewGitBackend(ctx.Repo.Root, ctx.backendOptions(flagStat))
	loop := triage.New(backend, triage.Options{
		In:                   os.Stdin,
		Out:                  os.Stdout,
		ConfirmUnappliedDrop: ctx.Config.EffectiveConfirmUnappliedDrop(),
	})

	sum, err := loop.Run()
	logging.Logger.Info("triage finished",
		"outcome", sum.Outcome.String(),
		"dropped", sum.Dropped,
		"branched", sum.Branched,
		"skipped", sum.Skipped,
		"applied", sum.Applied,
		"error", err,
	)
	if err != nil {
		return err
	}

	if line := summaryLine(sum); line != "" {
		fmt.Println()
		ui.Success("%s", line)
	}
	return nil
}

// summaryLine describes what a finished run did, or "" if there was nothing to do.
func summaryLine(sum triage.Summary) string {
	verb := "Done"
	switch sum.Outcome {
	case triage.Empty:
		return ""
	case triage.Stopped:
		verb = "Stopped"
	}
	return fmt.Sprintf("%s: %d dropped, %d branched, %d skipped, %d applied",
		verb, sum.Dropped, sum.Branched, sum.Skipped, sum.Applied)
}
