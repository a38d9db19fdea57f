package stash

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per Kind. Match with errors.Is.
var (
	// ErrNotFound indicates the stash index does not exist.
	ErrNotFound = errors.New("stash not found")

	// ErrExecutionFailed indicates git exited non-zero or could not be run.
	ErrExecutionFailed = errors.New("git command failed")

	// ErrEnvironment indicates the stash list cannot be read at all,
	// e.g. outside a repository.
	ErrEnvironment = errors.New("cannot access repository")

	// ErrConflict indicates an apply left merge conflicts in the working tree.
	ErrConflict = errors.New("merge conflict")

	// ErrPartial indicates a two-step operation finished its first step only.
	ErrPartial = errors.New("operation partially completed")
)

// Kind classifies a BackendError.
type Kind int

const (
	KindExecutionFailed Kind = iota
	KindNotFound
	KindEnvironment
	KindConflict
	KindPartial
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindEnvironment:
		return ErrEnvironment
	case KindConflict:
		return ErrConflict
	case KindPartial:
		return ErrPartial
	default:
		return ErrExecutionFailed
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// BackendError is returned by every Backend operation.
type BackendError struct {
	Op       string // "count", "show", "drop", "branch", "apply"
	Index    int    // -1 for count
	Kind     Kind
	ExitCode int // -1 when unknown
	Stderr   string
	Err      error
}

func (e *BackendError) Error() string {
	target := "stash"
	if e.Index >= 0 {
		target = fmt.Sprintf("stash@{%d}", e.Index)
	}
	msg := fmt.Sprintf("%s %s: %s", e.Op, target, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is returns true if target is the sentinel for e.Kind.
func (e *BackendError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the Kind of a BackendError in err's chain, and whether one was found.
func KindOf(err error) (Kind, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

// NewEnvironmentError wraps a failure to locate or read the repository.
func NewEnvironmentError(err error) *BackendError {
	return &BackendError{Op: "count", Index: -1, Kind: KindEnvironment, ExitCode: -1, Err: err}
}
