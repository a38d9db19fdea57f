package cmd

import (
	"testing"

	"github.com/mvwi/stash-triage/internal/triage"
)

func TestSummaryLine(t *testing.T) {
	tests := []struct {
		name string
		sum  triage.Summary
		want string
	}{
		{"empty run prints nothing", triage.Summary{Outcome: triage.Empty}, ""},
		{
			"completed run",
			triage.Summary{Outcome: triage.Completed, Dropped: 2, Branched: 1, Skipped: 3},
			"Done: 2 dropped, 1 branched, 3 skipped, 0 applied",
		},
		{
			"quit early",
			triage.Summary{Outcome: triage.Stopped, Applied: 1},
			"Stopped: 0 dropped, 0 branched, 0 skipped, 1 applied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summaryLine(tt.sum)
			if got != tt.want {
				t.Errorf("summaryLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
