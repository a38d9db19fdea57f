// Package triage walks the stash list one entry at a time and asks the user
// what to do with each.
package triage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mvwi/stash-triage/internal/logging"
	"github.com/mvwi/stash-triage/internal/stash"
	"github.com/mvwi/stash-triage/internal/ui"
)

// ErrInputExhausted is returned when input ends while a decision is pending.
// It is never treated as an implicit quit.
var ErrInputExhausted = errors.New("input ended before a decision was made")

// DropConfirmPrompt asks before dropping a stash that is not in the working tree.
const DropConfirmPrompt = "Stash may not be applied. Drop anyway? [y/N] "

// Outcome describes how a run ended.
type Outcome int

const (
	// Empty means there were no stashes to triage.
	Empty Outcome = iota
	// Completed means every stash was visited once.
	Completed
	// Stopped means the user stopped early.
	Stopped
)

func (o Outcome) String() string {
	switch o {
	case Empty:
		return "empty"
	case Completed:
		return "completed"
	default:
		return "quit"
	}
}

// Summary is the result of a run.
type Summary struct {
	Outcome  Outcome
	Dropped  int
	Branched int
	Skipped  int
	Applied  int
}

// Options configures a Loop.
type Options struct {
	In  io.Reader
	Out io.Writer
	// ConfirmUnappliedDrop asks before dropping a stash whose changes are not
	// in the working tree. Only effective if the backend is an AppliedChecker.
	ConfirmUnappliedDrop bool
}

// Loop is the triage state machine. A Loop is used for a single Run.
type Loop struct {
	backend     stash.Backend
	in          *bufio.Reader
	out         io.Writer
	confirmDrop bool

	sum Summary
}

// step is what the loop does after a decision has been carried out.
type step int

const (
	// stepRemoved: the entry is gone; the next one now sits at the same index.
	stepRemoved step = iota
	// stepKept: the entry stays; move the cursor past it.
	stepKept
	// stepRetry: nothing changed; present the same index again.
	stepRetry
	stepQuit
)

// New creates a Loop over backend.
func New(backend stash.Backend, opts Options) *Loop {
	return &Loop{
		backend:     backend,
		in:          bufio.NewReader(opts.In),
		out:         opts.Out,
		confirmDrop: opts.ConfirmUnappliedDrop,
	}
}

// Run triages every stash in order until none remain or the user quits.
//
// Entries that are dropped or branched disappear and shift the rest down,
// while skipped and applied entries stay put. The backend index of the entry
// under consideration is therefore the number of entries kept so far.
// The remaining count is re-read from the backend before each entry.
func (l *Loop) Run() (Summary, error) {
	l.sum = Summary{}

	total, err := l.backend.Count()
	if err != nil {
		return l.sum, err
	}
	if total == 0 {
		fmt.Fprintln(l.out, "No stashes found.")
		l.sum.Outcome = Empty
		return l.sum, nil
	}

	index, removed := 0, 0
	for {
		remaining, err := l.backend.Count()
		if err != nil {
			return l.sum, err
		}
		if index >= remaining {
			l.sum.Outcome = Completed
			return l.sum, nil
		}

		position := index + removed
		fmt.Fprintln(l.out, ui.Dim(fmt.Sprintf("[%d/%d]", position+1, max(total, position+1))))
		if err := l.backend.Show(index); err != nil {
			return l.sum, err
		}

		st, err := l.decide(index)
		if err != nil {
			return l.sum, err
		}
		logging.Logger.Debug("triage step", "index", index, "position", position, "step", int(st))

		switch st {
		case stepRemoved:
			removed++
		case stepKept:
			index++
		case stepQuit:
			l.sum.Outcome = Stopped
			return l.sum, nil
		}
	}
}

// decide prompts until a decision that ends the turn for index is made.
// Help and unrecognized input re-prompt without re-showing the stash.
func (l *Loop) decide(index int) (step, error) {
	for {
		line, err := l.readLine(ui.BoldBlue(Prompt))
		if err != nil {
			return 0, err
		}

		d := ParseDecision(line)
		logging.Logger.Debug("decision", "index", index, "input", line, "decision", d.String())

		switch d {
		case Help:
			fmt.Fprintln(l.out, ui.BoldRed(HelpText))
		case Quit:
			return stepQuit, nil
		case Skip:
			l.sum.Skipped++
			return stepKept, nil
		case Drop:
			return l.drop(index)
		case Branch:
			return l.branch(index)
		case Apply:
			return l.apply(index)
		default:
			ui.ErrorTo(l.out, "Invalid choice %q (press ? for help)", strings.TrimSpace(line))
		}
	}
}

func (l *Loop) drop(index int) (step, error) {
	if l.confirmDrop {
		ok, err := l.confirmUnapplied(index)
		if err != nil {
			return 0, err
		}
		if !ok {
			return stepRetry, nil
		}
	}

	if err := l.backend.Drop(index); err != nil {
		return 0, err
	}
	l.sum.Dropped++
	ui.SuccessTo(l.out, "Dropped stash")
	return stepRemoved, nil
}

// confirmUnapplied returns true when the drop may go ahead.
func (l *Loop) confirmUnapplied(index int) (bool, error) {
	checker, ok := l.backend.(stash.AppliedChecker)
	if !ok {
		return true, nil
	}

	applied, err := checker.Applied(index)
	if errors.Is(err, stash.ErrNotFound) {
		return false, err
	}
	if err != nil {
		logging.Logger.Debug("applied check failed", "index", index, "error", err)
	}
	if applied {
		return true, nil
	}

	line, err := l.readLine(DropConfirmPrompt)
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (l *Loop) branch(index int) (step, error) {
	err := l.backend.Branch(index)
	switch {
	case err == nil:
		l.sum.Branched++
		return stepRemoved, nil
	case errors.Is(err, stash.ErrExecutionFailed):
		ui.ErrorTo(l.out, "%v", err)
		return stepRetry, nil
	default:
		return 0, err
	}
}

func (l *Loop) apply(index int) (step, error) {
	err := l.backend.Apply(index)
	switch {
	case err == nil:
		l.sum.Applied++
		ui.SuccessTo(l.out, "Applied stash")
		return stepKept, nil
	case errors.Is(err, stash.ErrConflict):
		l.sum.Applied++
		ui.WarnTo(l.out, "Applied with conflicts; resolve them in the working tree")
		return stepKept, nil
	case errors.Is(err, stash.ErrExecutionFailed):
		ui.ErrorTo(l.out, "%v", err)
		return stepRetry, nil
	default:
		return 0, err
	}
}

// readLine prints prompt and reads one line. A final line without a newline
// is still returned; only a read that yields nothing reports exhaustion.
func (l *Loop) readLine(prompt string) (string, error) {
	fmt.Fprint(l.out, prompt)
	line, err := l.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return line, nil
			}
			fmt.Fprintln(l.out)
			return "", ErrInputExhausted
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return line, nil
}
