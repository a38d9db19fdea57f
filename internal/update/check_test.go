package update

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.10.0", "1.9.0", true},
		{"2.0.0", "1.99.99", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.3", "1.2.4", false},
		{"1.3.0-rc1", "1.2.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			if got := isNewer(tt.a, tt.b); got != tt.want {
				t.Errorf("isNewer(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestWriteNotice(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"newer release", "v0.1.0", "v0.2.0", true},
		{"same release", "v0.2.0", "v0.2.0", false},
		{"older release", "v0.3.0", "v0.2.0", false},
		{"dev build", "dev", "v9.9.9", false},
		{"empty cache", "v0.1.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got := writeNotice(&buf, tt.current, tt.latest)
			if got != tt.want {
				t.Fatalf("writeNotice() = %v, want %v", got, tt.want)
			}
			if got && !strings.Contains(buf.String(), upgradeHint) {
				t.Errorf("notice %q missing upgrade hint", buf.String())
			}
			if !got && buf.Len() != 0 {
				t.Errorf("unexpected output %q", buf.String())
			}
		})
	}
}

func newTestChecker(t *testing.T, handler http.HandlerFunc) *Checker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Checker{
		URL:       srv.URL,
		CachePath: filepath.Join(t.TempDir(), "cache", "latest-version"),
		Client:    srv.Client(),
		Interval:  time.Hour,
	}
}

func TestCheckerFetch(t *testing.T) {
	t.Run("caches the tag", func(t *testing.T) {
		c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"tag_name":"v1.4.0"}`)
		})
		if !c.Stale() {
			t.Fatal("missing cache should be stale")
		}

		tag, err := c.Fetch(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if tag != "v1.4.0" || c.Cached() != "v1.4.0" {
			t.Errorf("tag = %q, cached = %q, want v1.4.0", tag, c.Cached())
		}
		if c.Stale() {
			t.Error("fresh cache reported stale")
		}
	})

	t.Run("non-200 leaves cache alone", func(t *testing.T) {
		c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusForbidden)
		})
		if _, err := c.Fetch(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if c.Cached() != "" {
			t.Errorf("cached = %q, want empty", c.Cached())
		}
	})

	t.Run("empty tag is an error", func(t *testing.T) {
		c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		})
		if _, err := c.Fetch(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}
