package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeCompletion(&buf, shell); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), "git-stash-triage") {
				t.Errorf("%s completion does not mention the command", shell)
			}
		})
	}

	t.Run("unknown shell", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeCompletion(&buf, "tcsh"); err == nil {
			t.Fatal("expected error")
		}
	})
}
