package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultBranchPrefix is used for branches created from stashes.
const DefaultBranchPrefix = "stash/"

// RepoFile is the repo-local config file name.
const RepoFile = ".stash-triage.toml"

// Config holds all stash-triage configuration. Every field has a sensible default.
// Resolved via: defaults → global (~/.config/stash-triage/config.toml) → global per-repo → .stash-triage.toml
type Config struct {
	// BranchPrefix is prepended to branches created with "b": "<prefix><subject>".
	// Pointer so we can distinguish "not set" (nil) from "explicitly empty" ("").
	BranchPrefix *string `toml:"branch_prefix"`

	// ConfirmUnappliedDrop asks before dropping a stash whose changes are not
	// present in the working tree. Default: true.
	ConfirmUnappliedDrop *bool `toml:"confirm_unapplied_drop"`

	// ShowStat shows the diffstat instead of the full patch.
	ShowStat bool `toml:"show_stat"`

	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
}

// globalFile is the on-disk shape of ~/.config/stash-triage/config.toml.
// Top-level fields are defaults; [repos.<name>] sections override per repo.
type globalFile struct {
	Config
	Repos map[string]Config `toml:"repos"`
}

// Load reads config with layered precedence:
//  1. Hardcoded defaults (color="auto")
//  2. Global defaults (~/.config/stash-triage/config.toml top-level fields)
//  3. Global per-repo ([repos.<repoName>] section)
//  4. Repo-local (.stash-triage.toml in the repository root)
//
// Each layer only overrides fields it explicitly sets.
func Load(dir, repoName string) (*Config, error) {
	cfg := &Config{Color: "auto"}

	if globalPath, err := globalConfigPath(); err == nil {
		if data, err := os.ReadFile(globalPath); err == nil {
			var gf globalFile
			if err := toml.Unmarshal(data, &gf); err != nil {
				return nil, fmt.Errorf("global config (%s): %w", globalPath, err)
			}
			mergeConfig(cfg, &gf.Config)
			if repoName != "" {
				if repoCfg, ok := gf.Repos[repoName]; ok {
					mergeConfig(cfg, &repoCfg)
				}
			}
		}
	}

	repoPath := filepath.Join(dir, RepoFile)
	if data, err := os.ReadFile(repoPath); err == nil {
		var repoCfg Config
		if err := toml.Unmarshal(data, &repoCfg); err != nil {
			return nil, fmt.Errorf("repo config (%s): %w", repoPath, err)
		}
		mergeConfig(cfg, &repoCfg)
	}

	return cfg, nil
}

// mergeConfig copies non-zero fields from src into dst.
func mergeConfig(dst, src *Config) {
	if src.BranchPrefix != nil {
		dst.BranchPrefix = src.BranchPrefix
	}
	if src.ConfirmUnappliedDrop != nil {
		dst.ConfirmUnappliedDrop = src.ConfirmUnappliedDrop
	}
	if src.ShowStat {
		dst.ShowStat = true
	}
	if src.Color != "" {
		dst.Color = src.Color
	}
}

// globalConfigPath returns ~/.config/stash-triage/config.toml.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stash-triage", "config.toml"), nil
}

// EffectiveBranchPrefix returns the branch prefix, defaulting to "stash/".
// An explicitly empty prefix is honored.
func (c *Config) EffectiveBranchPrefix() string {
	if c.BranchPrefix != nil {
		return *c.BranchPrefix
	}
	return DefaultBranchPrefix
}

// EffectiveConfirmUnappliedDrop returns whether to confirm drops, defaulting to true.
func (c *Config) EffectiveConfirmUnappliedDrop() bool {
	if c.ConfirmUnappliedDrop != nil {
		return *c.ConfirmUnappliedDrop
	}
	return true
}
