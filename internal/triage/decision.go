package triage

import (
	"strings"
	"unicode/utf8"
)

// Decision is the command the user picked for the stash on screen.
type Decision int

const (
	Unrecognized Decision = iota
	Drop
	Branch
	Skip
	Apply
	Quit
	Help
)

// Prompt is shown before every decision.
const Prompt = "Action on this stash [d,b,s,a,q,?]? "

// HelpText is printed verbatim on "?".
const HelpText = `d - drop this stash
b - commit this stash to a separate branch and delete it
s - take no action on this stash
a - apply; apply the stash and take no further action
q - quit; take no further action on remaining stashes
? - print help`

// ParseDecision maps the first non-blank character of line to a Decision.
func ParseDecision(line string) Decision {
	line = strings.TrimSpace(line)
	if line == "" {
		return Unrecognized
	}
	r, _ := utf8.DecodeRuneInString(line)
	switch r {
	case 'd':
		return Drop
	case 'b':
		return Branch
	case 's':
		return Skip
	case 'a':
		return Apply
	case 'q':
		return Quit
	case '?':
		return Help
	default:
		return Unrecognized
	}
}

func (d Decision) String() string {
	switch d {
	case Drop:
		return "drop"
	case Branch:
		return "branch"
	case Skip:
		return "skip"
	case Apply:
		return "apply"
	case Quit:
		return "quit"
	case Help:
		return "help"
	default:
		return "unrecognized"
	}
}
