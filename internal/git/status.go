package git

import (
	"fmt"
	"strings"
)

// TreeStatus summarizes `git status --porcelain` for the working tree.
// Branching a stash commits everything in the tree, so any non-zero count
// makes the tree unsafe to branch from.
type TreeStatus struct {
	Staged     int
	Unstaged   int
	Untracked  int
	Conflicted int
}

// Dirty reports whether the tree has any local changes.
func (s TreeStatus) Dirty() bool {
	return s.Staged+s.Unstaged+s.Untracked+s.Conflicted > 0
}

// String renders the non-zero counts, e.g. "1 staged, 2 untracked".
func (s TreeStatus) String() string {
	var parts []string
	for _, c := range []struct {
		n    int
		what string
	}{
		{s.Conflicted, "conflicted"},
		{s.Staged, "staged"},
		{s.Unstaged, "unstaged"},
		{s.Untracked, "untracked"},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.what))
		}
	}
	if len(parts) == 0 {
		return "clean"
	}
	return strings.Join(parts, ", ")
}

// TreeStatusIn reads the working tree status of dir.
func TreeStatusIn(dir string) (TreeStatus, error) {
	// Raw: porcelain's leading space is significant.
	out, err := RunRawIn(dir, "status", "--porcelain")
	if err != nil {
		return TreeStatus{}, err
	}
	return ParseTreeStatus(out), nil
}

// HasChangesIn reports whether dir has local changes. A failed status read
// counts as clean; the git command that follows will surface the problem.
func HasChangesIn(dir string) bool {
	st, err := TreeStatusIn(dir)
	return err == nil && st.Dirty()
}

// ParseTreeStatus tallies porcelain v1 lines. A file modified both in the
// index and the tree counts once on each side.
func ParseTreeStatus(out string) TreeStatus {
	var st TreeStatus
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}
		x, y := line[0], line[1]
		switch {
		case x == '?' && y == '?':
			st.Untracked++
		case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
			st.Conflicted++
		default:
			if x != ' ' {
				st.Staged++
			}
			if y != ' ' {
				st.Unstaged++
			}
		}
	}
	return st
}
