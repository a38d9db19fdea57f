package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogFilePath(t *testing.T) {
	t.Run("explicit file wins", func(t *testing.T) {
		t.Setenv("STASH_TRIAGE_LOG_FILE", "/tmp/custom.log")
		t.Setenv("XDG_STATE_HOME", "/state")
		got, err := logFilePath()
		if err != nil {
			t.Fatal(err)
		}
		if got != "/tmp/custom.log" {
			t.Errorf("logFilePath() = %q, want /tmp/custom.log", got)
		}
	})

	t.Run("xdg state home", func(t *testing.T) {
		t.Setenv("STASH_TRIAGE_LOG_FILE", "")
		t.Setenv("XDG_STATE_HOME", "/state")
		got, err := logFilePath()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join("/state", "stash-triage", "stash-triage.log"); got != want {
			t.Errorf("logFilePath() = %q, want %q", got, want)
		}
	})

	t.Run("home fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("STASH_TRIAGE_LOG_FILE", "")
		t.Setenv("XDG_STATE_HOME", "")
		t.Setenv("HOME", home)
		got, err := logFilePath()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(home, ".local", "state", "stash-triage", "stash-triage.log"); got != want {
			t.Errorf("logFilePath() = %q, want %q", got, want)
		}
	})
}

func TestInitialize(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	t.Run("disabled returns no path", func(t *testing.T) {
		t.Setenv("STASH_TRIAGE_DEBUG", "")
		path, err := Initialize(false)
		if err != nil {
			t.Fatal(err)
		}
		if path != "" {
			t.Errorf("path = %q, want empty", path)
		}
	})

	t.Run("enabled writes records with a session id", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "logs", "debug.log")
		t.Setenv("STASH_TRIAGE_LOG_FILE", file)
		t.Setenv("STASH_TRIAGE_DEBUG", "1")

		path, err := Initialize(false)
		if err != nil {
			t.Fatal(err)
		}
		if path != file {
			t.Errorf("path = %q, want %q", path, file)
		}

		Logger.Debug("hello", "index", 3)
		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		out := string(data)
		if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"session":"`) {
			t.Errorf("log = %s, want hello record with session", out)
		}
	})
}
