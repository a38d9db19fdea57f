package git

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StashRef returns the reflog-style name of the stash at index i.
func StashRef(i int) string {
	return fmt.Sprintf("stash@{%d}", i)
}

// StashCountIn returns the number of stash entries in the repo at dir.
func StashCountIn(dir string) (int, error) {
	stashes, err := ListStashesIn(dir)
	if err != nil {
		return 0, err
	}
	return len(stashes), nil
}

// StashShowIn renders a stash to w. With stat, prints the diffstat summary
// instead of the full patch.
func StashShowIn(dir string, w io.Writer, i int, stat bool) error {
	mode := "-p"
	if stat {
		mode = "--stat"
	}
	return RunStreamIn(dir, w, "stash", "show", mode, StashRef(i))
}

// StashPatchIn returns the patch of a stash's tracked changes, byte for byte.
// Untracked files saved with -u are not part of it; see StashUntrackedIn.
func StashPatchIn(dir string, i int) (string, error) {
	return RunRawIn(dir, "stash", "show", "-p", "--binary", StashRef(i))
}

// StashUntrackedIn lists the untracked paths saved in a stash (its third
// parent), relative to the repository root. Stashes made without -u have none.
func StashUntrackedIn(dir string, i int) ([]string, error) {
	untracked := StashRef(i) + "^3"
	if RunSilentIn(dir, "rev-parse", "--verify", "--quiet", untracked) != nil {
		return nil, nil
	}
	out, err := RunRawIn(dir, "ls-tree", "-r", "-z", "--name-only", untracked)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range strings.Split(out, "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// StashDropIn permanently deletes a stash entry.
func StashDropIn(dir string, i int) error {
	_, err := RunIn(dir, "stash", "drop", StashRef(i))
	return err
}

// StashApplyIn applies a stash without removing it.
func StashApplyIn(dir string, i int) error {
	_, err := RunIn(dir, "stash", "apply", StashRef(i))
	return err
}

// IsStashAppliedIn reports whether the stash's changes are already present in
// the working tree: its tracked patch reverse-applies cleanly and every
// untracked file it saved exists.
func IsStashAppliedIn(dir string, i int) (bool, error) {
	untracked, err := StashUntrackedIn(dir, i)
	if err != nil {
		return false, err
	}
	if len(untracked) > 0 {
		root, err := RunIn(dir, "rev-parse", "--show-toplevel")
		if err != nil {
			return false, err
		}
		for _, p := range untracked {
			if _, err := os.Lstat(filepath.Join(root, filepath.FromSlash(p))); err != nil {
				return false, nil
			}
		}
	}

	patch, err := StashPatchIn(dir, i)
	if err != nil {
		return false, err
	}
	if patch == "" {
		return true, nil
	}
	_, err = RunInWithInput(dir, strings.NewReader(patch), "apply", "-R", "--check")
	return err == nil, nil
}

// IsConflictOutput reports whether git output describes a merge conflict
// rather than a hard failure.
func IsConflictOutput(out string) bool {
	return strings.Contains(out, "CONFLICT") || strings.Contains(out, "Merge conflict")
}

// Stash is one entry of `git stash list`.
type Stash struct {
	Ref     string // "stash@{0}"
	Subject string // "WIP on main: 1a2b3c4 message"
	Age     string // shortened, e.g. "3d"
}

// ListStashesIn returns every stash entry, newest first.
func ListStashesIn(dir string) ([]Stash, error) {
	out, err := RunIn(dir, "stash", "list", "--format=%gd%x1f%gs%x1f%cr")
	if err != nil {
		return nil, err
	}
	return parseStashList(out), nil
}

func parseStashList(out string) []Stash {
	if strings.TrimSpace(out) == "" {
		return nil
	}
	var stashes []Stash
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\x1f", 3)
		if len(parts) < 3 {
			continue
		}
		stashes = append(stashes, Stash{
			Ref:     parts[0],
			Subject: parts[1],
			Age:     shortenAge(parts[2]),
		})
	}
	return stashes
}
