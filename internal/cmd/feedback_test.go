package cmd

import (
	"net/url"
	"strings"
	"testing"
)

func TestFeedbackURL(t *testing.T) {
	t.Run("title is query-escaped", func(t *testing.T) {
		got := feedbackURL("drop & branch")
		u, err := url.Parse(got)
		if err != nil {
			t.Fatal(err)
		}
		if u.Path != "/mvwi/stash-triage/issues/new" {
			t.Errorf("path = %q", u.Path)
		}
		if title := u.Query().Get("title"); title != "drop & branch" {
			t.Errorf("title = %q, want %q", title, "drop & branch")
		}
	})

	t.Run("no title omits the parameter", func(t *testing.T) {
		u, err := url.Parse(feedbackURL(""))
		if err != nil {
			t.Fatal(err)
		}
		if u.Query().Has("title") {
			t.Errorf("unexpected title in %s", u)
		}
		if !strings.Contains(u.Query().Get("body"), "git-stash-triage "+Version) {
			t.Errorf("body = %q, want version line", u.Query().Get("body"))
		}
	})
}
