package git

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/mvwi/stash-triage/internal/logging"
)

// ExitError is returned when git ran but exited non-zero, or could not be started.
// ExitCode is -1 when the process never ran.
type ExitError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := e.Stderr
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the git exit status from err, or -1 if err carries none.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode
	}
	return -1
}

// gitCmd creates a git command with LC_ALL=C to ensure English output for parsing.
func gitCmd(dir string, args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	if dir != "" {
		cmd.Dir = dir
	}
	return cmd
}

func wrap(args []string, stdout, stderr string, err error) error {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	logging.Logger.Debug("git failed", "args", args, "exit_code", code, "stderr", stderr)
	return &ExitError{
		Args:     args,
		ExitCode: code,
		Stdout:   strings.TrimSpace(stdout),
		Stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}

// Run executes a git command and returns its trimmed stdout.
// If the command fails, the error includes stderr.
func Run(args ...string) (string, error) {
	return RunIn("", args...)
}

// RunIn executes a git command in a specific directory.
func RunIn(dir string, args ...string) (string, error) {
	return RunInWithInput(dir, nil, args...)
}

// RunInWithInput is RunIn with stdin fed from r.
func RunInWithInput(dir string, r io.Reader, args ...string) (string, error) {
	out, err := run(dir, r, args...)
	return strings.TrimSpace(out), err
}

// RunRawIn is RunIn without trimming, for output where leading
// whitespace is significant (porcelain status).
func RunRawIn(dir string, args ...string) (string, error) {
	return run(dir, nil, args...)
}

func run(dir string, r io.Reader, args ...string) (string, error) {
	cmd := gitCmd(dir, args...)
	cmd.Stdin = r

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Logger.Debug("git", "dir", dir, "args", args)
	if err := cmd.Run(); err != nil {
		return "", wrap(args, stdout.String(), stderr.String(), err)
	}
	return stdout.String(), nil
}

// RunPassthroughIn executes a git command in a directory with stdout/stderr
// connected to the terminal, for commands the user interacts with (commit).
func RunPassthroughIn(dir string, args ...string) error {
	return RunStreamIn(dir, os.Stdout, args...)
}

// RunStreamIn executes a git command with stdout written to w and stderr shown
// on the terminal. Stderr is also captured so callers can report it.
// When w is a terminal, git may start its pager.
func RunStreamIn(dir string, w io.Writer, args ...string) error {
	cmd := gitCmd(dir, args...)
	var stderr bytes.Buffer
	cmd.Stdin = os.Stdin
	cmd.Stdout = w
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	logging.Logger.Debug("git passthrough", slog.String("dir", dir), slog.Any("args", args))
	if err := cmd.Run(); err != nil {
		return wrap(args, "", stderr.String(), err)
	}
	return nil
}

// RunSilentIn executes a git command in a directory and discards all output.
// Returns only whether it succeeded.
func RunSilentIn(dir string, args ...string) error {
	cmd := gitCmd(dir, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return wrap(args, "", "", err)
	}
	return nil
}
