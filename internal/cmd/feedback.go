package cmd

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mvwi/stash-triage/internal/git"
)

const feedbackRepo = "mvwi/stash-triage"

var feedbackCmd = &cobra.Command{
	Use:   "feedback [message]",
	Short: "Open a GitHub issue to share feedback or report a bug",
	Long: `Open a new GitHub issue on the git-stash-triage repository.

If a message is provided, it will be used as the issue title.
The issue form opens in your default browser.

Examples:
  git-stash-triage feedback
  git-stash-triage feedback "show the stash age in the prompt"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFeedback,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	var title string
	if len(args) > 0 {
		title = args[0]
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Opening GitHub issue form...")

	if _, err := exec.LookPath("gh"); err == nil {
		return feedbackViaGH(title)
	}
	return feedbackViaBrowser(title)
}

func feedbackViaGH(title string) error {
	args := []string{"issue", "create", "--web", "--repo", feedbackRepo, "--body", feedbackBody()}
	if title != "" {
		args = append(args, "--title", title)
	}
	return exec.Command("gh", args...).Run()
}

func feedbackViaBrowser(title string) error {
	issueURL := feedbackURL(title)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", issueURL)
	case "linux":
		cmd = exec.Command("xdg-open", issueURL)
	default:
		return fmt.Errorf("cannot open browser on %s, visit %s", runtime.GOOS, issueURL)
	}
	return cmd.Run()
}

// feedbackURL builds the new-issue URL with title and environment prefilled.
func feedbackURL(title string) string {
	q := url.Values{}
	if title != "" {
		q.Set("title", title)
	}
	q.Set("body", feedbackBody())
	return "https://github.com/" + feedbackRepo + "/issues/new?" + q.Encode()
}

// feedbackBody is the issue template: room for the report, then the
// versions that matter when a stash operation misbehaves.
func feedbackBody() string {
	gitVersion, err := git.Run("--version")
	if err != nil {
		gitVersion = "git version unknown"
	}
	return fmt.Sprintf("\n\n---\ngit-stash-triage %s (%s/%s)\n%s", Version, runtime.GOOS, runtime.GOARCH, gitVersion)
}
