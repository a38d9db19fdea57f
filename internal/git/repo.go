package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when no git repository encloses the directory.
var ErrNotRepository = errors.New("not a git repository")

// Repo identifies the working tree triage runs against.
type Repo struct {
	// Root is the absolute path of the working tree.
	Root string
	// Name is the basename of Root, used for per-repo config sections.
	Name string
}

// OpenRepo locates the repository enclosing dir, walking up parent
// directories like git does. Linked worktrees (.git file) are supported.
// Bare repositories are rejected since they have no stash to triage.
func OpenRepo(dir string) (*Repo, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}

	r, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotRepository)
	}
	if err != nil {
		return nil, err
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}

	root := wt.Filesystem.Root()
	return &Repo{Root: root, Name: filepath.Base(root)}, nil
}

// GitDirIn returns the .git directory path (handles worktrees where .git is a file).
func GitDirIn(dir string) (string, error) {
	return RunIn(dir, "rev-parse", "--git-dir")
}
