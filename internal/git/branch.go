package git

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// CurrentBranchIn returns the current branch for a specific worktree.
func CurrentBranchIn(dir string) (string, error) {
	return RunIn(dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// BranchExistsIn checks if a local branch exists.
func BranchExistsIn(dir, name string) bool {
	return RunSilentIn(dir, "show-ref", "--verify", "--quiet", "refs/heads/"+name) == nil
}

// CheckoutNewBranchIn creates a branch at HEAD and switches to it.
func CheckoutNewBranchIn(dir, name string) error {
	_, err := RunIn(dir, "checkout", "-b", name)
	return err
}

// CheckoutPreviousIn switches back to the previously checked-out branch.
func CheckoutPreviousIn(dir string) error {
	_, err := RunIn(dir, "checkout", "-")
	return err
}

// RenameCurrentBranchIn renames the checked-out branch.
func RenameCurrentBranchIn(dir, newName string) error {
	_, err := RunIn(dir, "branch", "-m", newName)
	return err
}

// DeleteBranchIn force-deletes a local branch.
func DeleteBranchIn(dir, name string) error {
	_, err := RunIn(dir, "branch", "-D", name)
	return err
}

// StageAllIn stages every change in the worktree.
func StageAllIn(dir string) error {
	_, err := RunIn(dir, "add", ".")
	return err
}

// CommitInteractiveIn runs `git commit -n` with the user's editor attached
// to the terminal. Hooks are skipped.
func CommitInteractiveIn(dir string) error {
	return RunPassthroughIn(dir, "commit", "-n")
}

// DiscardAllIn unstages and throws away every change, tracked or untracked,
// including new directories. Ignored files are kept.
func DiscardAllIn(dir string) error {
	for _, args := range [][]string{
		{"reset", "-q", "HEAD"},
		{"checkout", "--", "."},
		{"clean", "-fdq"},
	} {
		if _, err := RunIn(dir, args...); err != nil {
			return err
		}
	}
	return nil
}

// CommitSubjectIn returns the subject of the last commit message the user
// wrote, read from COMMIT_EDITMSG in the git dir.
func CommitSubjectIn(dir string) (string, error) {
	gitDir, err := GitDirIn(dir)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	f, err := os.Open(filepath.Join(gitDir, "COMMIT_EDITMSG"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	subject := ParseCommitSubject(bufio.NewScanner(f))
	if subject == "" {
		return "", fmt.Errorf("empty commit message")
	}
	return subject, nil
}

// ParseCommitSubject returns the first line that is neither empty nor a
// "#" comment.
func ParseCommitSubject(sc *bufio.Scanner) string {
	for sc.Scan() {
		line := sc.Text()
		if line != "" && !strings.HasPrefix(line, "#") {
			return line
		}
	}
	return ""
}

// SlugifySubject turns a commit subject into a branch-safe name:
// whitespace runs become "_", anything not alphanumeric or "_" is dropped,
// and the result is lowercased.
// e.g., "Fix the  login bug!" → "fix_the_login_bug"
func SlugifySubject(subject string) string {
	joined := strings.Join(strings.Fields(subject), "_")
	var b strings.Builder
	for _, r := range joined {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// shortenAge converts "2 hours ago" → "2h", "3 days ago" → "3d", etc.
func shortenAge(s string) string {
	s = strings.TrimSuffix(s, " ago")
	replacements := []struct{ long, short string }{
		{"seconds", "s"}, {"second", "s"},
		{"minutes", "m"}, {"minute", "m"},
		{"hours", "h"}, {"hour", "h"},
		{"days", "d"}, {"day", "d"},
		{"weeks", "w"}, {"week", "w"},
		{"months", "mo"}, {"month", "mo"},
		{"years", "y"}, {"year", "y"},
	}
	for _, r := range replacements {
		s = strings.Replace(s, " "+r.long, r.short, 1)
	}
	return s
}
