package stash

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/mvwi/stash-triage/internal/git"
)

// scene is a throwaway repository with one commit of a.txt ("base").
type scene struct {
	t   *testing.T
	dir string
	out bytes.Buffer
}

func newScene(t *testing.T) *scene {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	color.NoColor = true

	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	s := &scene{t: t, dir: t.TempDir()}
	s.git("init", "-q")
	s.write("a.txt", "base\n")
	s.git("add", ".")
	s.git("commit", "-q", "-m", "base")
	return s
}

func (s *scene) git(args ...string) string {
	s.t.Helper()
	out, err := git.RunIn(s.dir, args...)
	require.NoError(s.t, err)
	return out
}

func (s *scene) write(name, content string) {
	s.t.Helper()
	require.NoError(s.t, os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0644))
}

func (s *scene) read(name string) string {
	s.t.Helper()
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	require.NoError(s.t, err)
	return string(data)
}

// stash records a change to a.txt as a new stash entry.
func (s *scene) stash(content, message string) {
	s.t.Helper()
	s.write("a.txt", content)
	s.git("stash", "push", "-q", "-m", message)
}

func (s *scene) currentBranch() string {
	s.t.Helper()
	branch, err := git.CurrentBranchIn(s.dir)
	require.NoError(s.t, err)
	return branch
}

func (s *scene) backend() *GitBackend {
	return NewGitBackend(s.dir, Options{BranchPrefix: "stash/", Out: &s.out})
}

func (s *scene) subjects() []string {
	s.t.Helper()
	stashes, err := git.ListStashesIn(s.dir)
	require.NoError(s.t, err)
	var out []string
	for _, st := range stashes {
		out = append(out, st.Subject)
	}
	return out
}

func TestGitBackendCount(t *testing.T) {
	t.Run("no stashes", func(t *testing.T) {
		s := newScene(t)
		n, err := s.backend().Count()
		require.NoError(t, err)
		require.Equal(t, 0, n)
	})

	t.Run("counts entries", func(t *testing.T) {
		s := newScene(t)
		s.stash("one\n", "first")
		s.stash("two\n", "second")
		n, err := s.backend().Count()
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("outside a repository", func(t *testing.T) {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git not installed")
		}
		t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
		_, err := NewGitBackend(t.TempDir(), Options{}).Count()
		require.ErrorIs(t, err, ErrEnvironment)
	})

	t.Run("failure after the first count is an execution failure", func(t *testing.T) {
		s := newScene(t)
		t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
		b := s.backend()
		_, err := b.Count()
		require.NoError(t, err)

		require.NoError(t, os.RemoveAll(filepath.Join(s.dir, ".git")))
		_, err = b.Count()
		require.ErrorIs(t, err, ErrExecutionFailed)
		require.NotErrorIs(t, err, ErrEnvironment)
	})
}

func TestGitBackendShow(t *testing.T) {
	t.Run("writes header and patch", func(t *testing.T) {
		s := newScene(t)
		s.stash("changed\n", "my change")
		require.NoError(t, s.backend().Show(0))
		out := s.out.String()
		require.Contains(t, out, "stash@{0}")
		require.Contains(t, out, "my change")
		require.Contains(t, out, "+changed")
	})

	t.Run("stat mode", func(t *testing.T) {
		s := newScene(t)
		s.stash("changed\n", "my change")
		b := NewGitBackend(s.dir, Options{Stat: true, Out: &s.out})
		require.NoError(t, b.Show(0))
		require.Contains(t, s.out.String(), "a.txt |")
		require.NotContains(t, s.out.String(), "+changed")
	})

	t.Run("out of range", func(t *testing.T) {
		s := newScene(t)
		s.stash("changed\n", "only")
		err := s.backend().Show(1)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGitBackendDrop(t *testing.T) {
	s := newScene(t)
	s.stash("old\n", "older")
	s.stash("new\n", "newer")

	require.NoError(t, s.backend().Drop(0))
	subjects := s.subjects()
	require.Len(t, subjects, 1)
	require.Contains(t, subjects[0], "older")

	require.ErrorIs(t, s.backend().Drop(5), ErrNotFound)
}

func TestGitBackendApply(t *testing.T) {
	t.Run("applies and keeps the entry", func(t *testing.T) {
		s := newScene(t)
		s.stash("stashed\n", "work")
		b := s.backend()

		applied, err := b.Applied(0)
		require.NoError(t, err)
		require.False(t, applied)

		require.NoError(t, b.Apply(0))
		require.Equal(t, "stashed\n", s.read("a.txt"))
		require.Len(t, s.subjects(), 1)

		applied, err = b.Applied(0)
		require.NoError(t, err)
		require.True(t, applied)
	})

	t.Run("untracked-only stash is not applied until its files exist", func(t *testing.T) {
		s := newScene(t)
		s.write("new.txt", "fresh\n")
		s.git("stash", "push", "-q", "-u", "-m", "untracked")
		b := s.backend()

		applied, err := b.Applied(0)
		require.NoError(t, err)
		require.False(t, applied)

		require.NoError(t, b.Apply(0))
		applied, err = b.Applied(0)
		require.NoError(t, err)
		require.True(t, applied)
	})

	t.Run("mixed stash needs its untracked files too", func(t *testing.T) {
		s := newScene(t)
		s.write("a.txt", "tracked edit\n")
		require.NoError(t, os.MkdirAll(filepath.Join(s.dir, "sub"), 0755))
		s.write("sub/new.txt", "fresh\n")
		s.git("stash", "push", "-q", "-u", "-m", "mixed")
		b := s.backend()

		require.NoError(t, b.Apply(0))
		require.NoError(t, os.Remove(filepath.Join(s.dir, "sub", "new.txt")))

		applied, err := b.Applied(0)
		require.NoError(t, err)
		require.False(t, applied)
	})

	t.Run("hunk ending in a blank context line", func(t *testing.T) {
		s := newScene(t)
		s.write("b.txt", "a\nX\n\n")
		s.git("add", "b.txt")
		s.git("commit", "-q", "-m", "add b")
		s.write("b.txt", "a\nY\n\n")
		s.git("stash", "push", "-q", "-m", "blank tail")

		patch, err := git.StashPatchIn(s.dir, 0)
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(patch, "+Y\n \n"), "patch tail: %q", patch)

		b := s.backend()
		require.NoError(t, b.Apply(0))
		applied, err := b.Applied(0)
		require.NoError(t, err)
		require.True(t, applied)
	})

	t.Run("conflict is reported as such", func(t *testing.T) {
		s := newScene(t)
		s.stash("stashed\n", "work")
		s.write("a.txt", "committed\n")
		s.git("commit", "-q", "-am", "diverge")

		err := s.backend().Apply(0)
		require.ErrorIs(t, err, ErrConflict)
		require.Len(t, s.subjects(), 1)
	})

	t.Run("dirty file is a hard failure", func(t *testing.T) {
		s := newScene(t)
		s.stash("stashed\n", "work")
		s.write("a.txt", "local edit\n")

		err := s.backend().Apply(0)
		require.ErrorIs(t, err, ErrExecutionFailed)
		require.Equal(t, "local edit\n", s.read("a.txt"))
	})
}

func TestGitBackendBranch(t *testing.T) {
	t.Run("commits to a branch named after the subject and drops", func(t *testing.T) {
		s := newScene(t)
		s.stash("login work\n", "wip")
		start := s.currentBranch()
		t.Setenv("GIT_EDITOR", "echo 'Save login work' >")

		require.NoError(t, s.backend().Branch(0))
		require.Empty(t, s.subjects())
		require.True(t, git.BranchExistsIn(s.dir, "stash/save_login_work"))
		require.Equal(t, start, s.currentBranch())
		require.Equal(t, "login work", s.git("show", "stash/save_login_work:a.txt"))
		require.Contains(t, s.out.String(), "stash/save_login_work")
	})

	t.Run("name collision gets a suffix", func(t *testing.T) {
		s := newScene(t)
		s.git("branch", "stash/save_login_work")
		s.stash("login work\n", "wip")
		t.Setenv("GIT_EDITOR", "echo 'Save login work' >")

		require.NoError(t, s.backend().Branch(0))
		require.True(t, git.BranchExistsIn(s.dir, "stash/save_login_work_2"))
	})

	t.Run("aborted commit keeps the stash and cleans up", func(t *testing.T) {
		s := newScene(t)
		s.stash("login work\n", "wip")
		start := s.currentBranch()
		t.Setenv("GIT_EDITOR", "true")

		err := s.backend().Branch(0)
		require.ErrorIs(t, err, ErrExecutionFailed)
		require.Len(t, s.subjects(), 1)
		require.Equal(t, start, s.currentBranch())
		require.False(t, git.BranchExistsIn(s.dir, "stash/"+tempBranchSuffix))
		require.Equal(t, "base\n", s.read("a.txt"))
	})

	t.Run("aborted commit removes restored untracked directories", func(t *testing.T) {
		s := newScene(t)
		require.NoError(t, os.MkdirAll(filepath.Join(s.dir, "sub"), 0755))
		s.write("sub/new.txt", "fresh\n")
		s.git("stash", "push", "-q", "-u", "-m", "untracked dir")
		start := s.currentBranch()
		t.Setenv("GIT_EDITOR", "true")

		err := s.backend().Branch(0)
		require.ErrorIs(t, err, ErrExecutionFailed)
		require.NotErrorIs(t, err, ErrPartial)

		st, err := git.TreeStatusIn(s.dir)
		require.NoError(t, err)
		require.False(t, st.Dirty(), "tree after rollback: %s", st)
		require.NoDirExists(t, filepath.Join(s.dir, "sub"))
		require.Equal(t, start, s.currentBranch())
		require.False(t, git.BranchExistsIn(s.dir, "stash/"+tempBranchSuffix))
		require.Len(t, s.subjects(), 1)
	})

	t.Run("local changes block branching", func(t *testing.T) {
		s := newScene(t)
		s.stash("login work\n", "wip")
		s.write("a.txt", "dirty\n")

		err := s.backend().Branch(0)
		require.ErrorIs(t, err, ErrExecutionFailed)
		require.True(t, strings.Contains(err.Error(), "unstaged"))
		require.Len(t, s.subjects(), 1)
	})
}

func TestBackendError(t *testing.T) {
	err := &BackendError{Op: "drop", Index: 2, Kind: KindNotFound, ExitCode: -1}
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrExecutionFailed)
	require.Equal(t, "drop stash@{2}: stash not found", err.Error())

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindNotFound, kind)

	env := NewEnvironmentError(git.ErrNotRepository)
	require.ErrorIs(t, env, ErrEnvironment)
	require.ErrorIs(t, env, git.ErrNotRepository)
}
