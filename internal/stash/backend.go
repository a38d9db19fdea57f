// Package stash executes stash operations against a git repository.
package stash

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mvwi/stash-triage/internal/git"
	"github.com/mvwi/stash-triage/internal/logging"
	"github.com/mvwi/stash-triage/internal/ui"
)

// Backend is the set of stash operations the triage loop drives.
// Indexes are zero-based positions in the current stash list; they shift
// down by one after every successful Drop or Branch.
type Backend interface {
	Count() (int, error)
	Show(index int) error
	Drop(index int) error
	Branch(index int) error
	Apply(index int) error
}

// AppliedChecker is implemented by backends that can tell whether a stash's
// changes are already present in the working tree.
type AppliedChecker interface {
	Applied(index int) (bool, error)
}

// exitSIGPIPE is git's status when the pager is closed before the diff ends.
const exitSIGPIPE = 141

const tempBranchSuffix = "__TEMP_STASH__"

// errDirtyTree is returned by Branch when local changes would leak into the commit.
var errDirtyTree = errors.New("can't commit branches with unstaged files")

// GitBackend runs stash operations with the git CLI.
type GitBackend struct {
	dir          string
	out          io.Writer
	branchPrefix string
	stat         bool

	// counted is set after the first successful Count. Later failures are
	// mid-run breakage rather than a bad environment.
	counted bool
}

// Options configures a GitBackend.
type Options struct {
	// BranchPrefix is prepended to branches created by Branch, e.g. "stash/".
	BranchPrefix string
	// Stat shows the diffstat instead of the full patch.
	Stat bool
	// Out receives Show output. Defaults to os.Stdout.
	Out io.Writer
}

// NewGitBackend returns a backend for the repository at dir ("" = cwd).
func NewGitBackend(dir string, opts Options) *GitBackend {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &GitBackend{
		dir:          dir,
		out:          out,
		branchPrefix: opts.BranchPrefix,
		stat:         opts.Stat,
	}
}

func newError(op string, index int, kind Kind, err error) *BackendError {
	be := &BackendError{Op: op, Index: index, Kind: kind, ExitCode: -1, Err: err}
	var ee *git.ExitError
	if errors.As(err, &ee) {
		be.ExitCode = ee.ExitCode
		be.Stderr = ee.Stderr
	}
	logging.Logger.Debug("backend error", "op", op, "index", index, "kind", kind.String(), "exit_code", be.ExitCode)
	return be
}

// Count returns the number of stash entries. A failure on the first call is
// KindEnvironment (not a repository, git missing); later failures are
// KindExecutionFailed.
func (b *GitBackend) Count() (int, error) {
	n, err := git.StashCountIn(b.dir)
	if err != nil {
		kind := KindEnvironment
		if b.counted {
			kind = KindExecutionFailed
		}
		return 0, newError("count", -1, kind, err)
	}
	b.counted = true
	return n, nil
}

// lookup returns the stash at index, or a NotFound error for op.
func (b *GitBackend) lookup(op string, index int) (git.Stash, error) {
	stashes, err := git.ListStashesIn(b.dir)
	if err != nil {
		return git.Stash{}, newError(op, index, KindExecutionFailed, err)
	}
	if index < 0 || index >= len(stashes) {
		return git.Stash{}, newError(op, index, KindNotFound,
			fmt.Errorf("index %d out of range (%d entries)", index, len(stashes)))
	}
	return stashes[index], nil
}

// Show prints a one-line header followed by the stash's patch (or diffstat).
func (b *GitBackend) Show(index int) error {
	s, err := b.lookup("show", index)
	if err != nil {
		return err
	}

	fmt.Fprintf(b.out, "%s %s %s\n", ui.Bold(s.Ref), ui.Dim(s.Age), ui.Truncate(s.Subject, 72))
	if err := git.StashShowIn(b.dir, b.out, index, b.stat); err != nil {
		if git.ExitCode(err) == exitSIGPIPE {
			return nil
		}
		return newError("show", index, KindExecutionFailed, err)
	}
	return nil
}

// Drop permanently deletes the stash at index.
func (b *GitBackend) Drop(index int) error {
	if _, err := b.lookup("drop", index); err != nil {
		return err
	}
	if err := git.StashDropIn(b.dir, index); err != nil {
		return newError("drop", index, KindExecutionFailed, err)
	}
	return nil
}

// Apply applies the stash at index and keeps the entry. Merge conflicts are
// reported as KindConflict; the working tree is left conflicted for the user.
func (b *GitBackend) Apply(index int) error {
	if _, err := b.lookup("apply", index); err != nil {
		return err
	}
	if err := git.StashApplyIn(b.dir, index); err != nil {
		var ee *git.ExitError
		if errors.As(err, &ee) && (git.IsConflictOutput(ee.Stdout) || git.IsConflictOutput(ee.Stderr)) {
			return newError("apply", index, KindConflict, err)
		}
		return newError("apply", index, KindExecutionFailed, err)
	}
	return nil
}

// Applied reports whether the stash's patch is already in the working tree.
func (b *GitBackend) Applied(index int) (bool, error) {
	if _, err := b.lookup("applied", index); err != nil {
		return false, err
	}
	ok, err := git.IsStashAppliedIn(b.dir, index)
	if err != nil {
		return false, newError("applied", index, KindExecutionFailed, err)
	}
	return ok, nil
}

// Branch commits the stash onto a new branch named after the commit subject,
// then drops it. The user writes the commit message in their editor.
//
// If anything fails before the commit exists, the working tree is cleaned,
// the temporary branch removed and the stash left alone (KindExecutionFailed).
// If that cleanup fails too, or anything fails after the commit, the error is
// KindPartial: the repository needs a look before triage can go on.
func (b *GitBackend) Branch(index int) error {
	if _, err := b.lookup("branch", index); err != nil {
		return err
	}
	if git.HasChangesIn(b.dir) {
		return newError("branch", index, KindExecutionFailed, errDirtyTree)
	}

	from, err := git.CurrentBranchIn(b.dir)
	if err != nil {
		return newError("branch", index, KindExecutionFailed, err)
	}
	logging.Logger.Debug("branching stash", "index", index, "from", from)

	temp := b.branchPrefix + tempBranchSuffix
	if err := git.CheckoutNewBranchIn(b.dir, temp); err != nil {
		return newError("branch", index, KindExecutionFailed, err)
	}

	if err := b.commitStash(index); err != nil {
		if rbErr := b.rollback(temp); rbErr != nil {
			return newError("branch", index, KindPartial,
				fmt.Errorf("%w; rollback failed, check %s and the working tree: %w", err, temp, rbErr))
		}
		return newError("branch", index, KindExecutionFailed, err)
	}

	name := b.branchName()
	if err := git.RenameCurrentBranchIn(b.dir, name); err != nil {
		if coErr := git.CheckoutPreviousIn(b.dir); coErr != nil {
			err = fmt.Errorf("%w; switching back to %s: %w", err, from, coErr)
		}
		return newError("branch", index, KindPartial,
			fmt.Errorf("committed on %s but rename failed: %w", temp, err))
	}
	if err := git.CheckoutPreviousIn(b.dir); err != nil {
		return newError("branch", index, KindPartial,
			fmt.Errorf("created %s but could not switch back to %s: %w", name, from, err))
	}
	if err := git.StashDropIn(b.dir, index); err != nil {
		return newError("branch", index, KindPartial,
			fmt.Errorf("created %s but could not drop the stash: %w", name, err))
	}

	logging.Logger.Info("stash committed to branch", "index", index, "branch", name)
	ui.SuccessTo(b.out, "Saved to branch %s", name)
	return nil
}

func (b *GitBackend) commitStash(index int) error {
	if err := git.StashApplyIn(b.dir, index); err != nil {
		return err
	}
	if err := git.StageAllIn(b.dir); err != nil {
		return err
	}
	return git.CommitInteractiveIn(b.dir)
}

// rollback discards the applied stash and removes the temporary branch.
// It stops at the first failing step; later steps depend on it.
func (b *GitBackend) rollback(temp string) error {
	if err := git.DiscardAllIn(b.dir); err != nil {
		return err
	}
	if err := git.CheckoutPreviousIn(b.dir); err != nil {
		return err
	}
	return git.DeleteBranchIn(b.dir, temp)
}

// branchName derives a free branch name from the commit subject.
func (b *GitBackend) branchName() string {
	slug := "untitled"
	if subject, err := git.CommitSubjectIn(b.dir); err == nil {
		if s := git.SlugifySubject(subject); s != "" {
			slug = s
		}
	}

	name := b.branchPrefix + slug
	for n := 2; git.BranchExistsIn(b.dir, name); n++ {
		name = fmt.Sprintf("%s%s_%d", b.branchPrefix, slug, n)
	}
	return name
}
