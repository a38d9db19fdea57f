// Package update tells the user when a newer release is out. The release tag
// is fetched in the background at most once a day and cached on disk; the
// notice is printed from the cache after the command has finished.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mvwi/stash-triage/internal/logging"
	"github.com/mvwi/stash-triage/internal/ui"
)

const (
	releasesURL   = "https://api.github.com/repos/mvwi/stash-triage/releases/latest"
	checkInterval = 24 * time.Hour
	httpTimeout   = 3 * time.Second
	upgradeHint   = "go install github.com/mvwi/stash-triage@latest"
)

// Checker fetches the latest release tag into CachePath.
type Checker struct {
	URL       string
	CachePath string
	Client    *http.Client
	Interval  time.Duration
}

// NewChecker returns a Checker caching under <user config dir>/stash-triage/.
func NewChecker() (*Checker, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Checker{
		URL:       releasesURL,
		CachePath: filepath.Join(configDir, "stash-triage", "latest-version"),
		Client:    &http.Client{Timeout: httpTimeout},
		Interval:  checkInterval,
	}, nil
}

// Stale reports whether the cache is missing or older than Interval.
func (c *Checker) Stale() bool {
	info, err := os.Stat(c.CachePath)
	return err != nil || time.Since(info.ModTime()) >= c.Interval
}

// Fetch asks the releases endpoint for the latest tag and caches it.
func (c *Checker) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("releases: %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("releases: %w", err)
	}
	if release.TagName == "" {
		return "", errors.New("releases: empty tag")
	}

	if err := os.MkdirAll(filepath.Dir(c.CachePath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(c.CachePath, []byte(release.TagName), 0644); err != nil {
		return "", err
	}
	return release.TagName, nil
}

// Cached returns the last fetched tag, or "" if none.
func (c *Checker) Cached() string {
	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// CheckInBackground refreshes a stale cache in a goroutine. If the command
// exits before the fetch completes the cache is simply not updated.
// Skipped in CI and when STASH_TRIAGE_NO_UPDATE_CHECK is set.
func CheckInBackground() {
	if os.Getenv("CI") != "" || os.Getenv("STASH_TRIAGE_NO_UPDATE_CHECK") != "" {
		return
	}
	c, err := NewChecker()
	if err != nil || !c.Stale() {
		return
	}

	go func() {
		tag, err := c.Fetch(context.Background())
		logging.Logger.Debug("update check", "url", c.URL, "latest", tag, "error", err)
	}()
}

// PrintNoticeIfNewer prints an update notice to stderr if the cached
// release is newer than currentVersion.
func PrintNoticeIfNewer(currentVersion string) {
	c, err := NewChecker()
	if err != nil {
		return
	}
	writeNotice(os.Stderr, currentVersion, c.Cached())
}

// writeNotice prints the update notice when latest is newer than current.
// Development builds never get a notice.
func writeNotice(w io.Writer, currentVersion, latest string) bool {
	if latest == "" {
		return false
	}

	cur := strings.TrimPrefix(currentVersion, "v")
	lat := strings.TrimPrefix(latest, "v")
	if cur == "dev" || !isNewer(lat, cur) {
		return false
	}

	fmt.Fprintf(w, "\n%s %s → %s\n",
		ui.Cyan(ui.PushUp+" Update available:"),
		ui.Dim(currentVersion),
		ui.Cyan(latest),
	)
	fmt.Fprintf(w, "  %s\n", ui.Dim(upgradeHint))
	return true
}

// isNewer returns true if version a is newer than b (major.minor.patch only).
func isNewer(a, b string) bool {
	av, bv := parseSemver(a), parseSemver(b)
	for i := range av {
		if av[i] != bv[i] {
			return av[i] > bv[i]
		}
	}
	return false
}

// parseSemver extracts major.minor.patch as ints; unparsable parts are 0.
func parseSemver(v string) [3]int {
	var parts [3]int
	for i, s := range strings.SplitN(strings.TrimPrefix(v, "v"), ".", 3) {
		// "1-rc1" → "1"
		if idx := strings.IndexAny(s, "-+"); idx >= 0 {
			s = s[:idx]
		}
		fmt.Sscanf(s, "%d", &parts[i])
	}
	return parts
}
