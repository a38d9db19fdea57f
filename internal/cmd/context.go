package cmd

import (
	"errors"

	"github.com/mvwi/stash-triage/internal/config"
	"github.com/mvwi/stash-triage/internal/git"
	"github.com/mvwi/stash-triage/internal/stash"
)

// cmdContext holds the resolved repo + config the triage needs.
type cmdContext struct {
	Config *config.Config
	Repo   *git.Repo
}

// newContext builds shared context from the current repo.
// Not being inside a repository is an environment error.
func newContext() (*cmdContext, error) {
	repo, err := git.OpenRepo("")
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return nil, stash.NewEnvironmentError(err)
		}
		return nil, err
	}

	cfg, err := config.Load(repo.Root, repo.Name)
	if err != nil {
		return nil, err
	}

	return &cmdContext{Config: cfg, Repo: repo}, nil
}

// backendOptions builds the git backend settings from config and flags.
func (c *cmdContext) backendOptions(stat bool) stash.Options {
	return stash.Options{
		BranchPrefix: c.Config.EffectiveBranchPrefix(),
		Stat:         stat || c.Config.ShowStat,
	}
}
