// Package logging provides the opt-in debug log. User-facing output goes
// through internal/ui; this is for diagnosing what git was asked to do.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared debug logger. It discards until Initialize enables it.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Initialize enables debug logging when debug is set or STASH_TRIAGE_DEBUG=1.
// Logs go to STASH_TRIAGE_LOG_FILE, or ~/.local/state/stash-triage/stash-triage.log,
// rotated by size. Every record carries a per-run session id so interleaved
// runs can be told apart. Returns the log path, or "" when disabled.
func Initialize(debug bool) (string, error) {
	if os.Getenv("STASH_TRIAGE_DEBUG") == "1" {
		debug = true
	}
	if !debug {
		Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return "", nil
	}

	path, err := logFilePath()
	if err != nil {
		return "", fmt.Errorf("failed to get log path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	handler := slog.NewJSONHandler(newRotatingWriter(path), &slog.HandlerOptions{Level: slog.LevelDebug})
	Logger = slog.New(handler).With("session", uuid.New().String())
	Logger.Info("debug logging initialized", "log_file", path, "pid", os.Getpid())
	return path, nil
}

// newRotatingWriter returns a size-rotated file writer. Limits can be tuned
// with STASH_TRIAGE_LOG_MAX_SIZE (MB) and STASH_TRIAGE_LOG_MAX_BACKUPS.
func newRotatingWriter(path string) *lumberjack.Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 3,
		MaxAge:     30,
	}
	if n, err := strconv.Atoi(os.Getenv("STASH_TRIAGE_LOG_MAX_SIZE")); err == nil && n > 0 {
		w.MaxSize = n
	}
	if n, err := strconv.Atoi(os.Getenv("STASH_TRIAGE_LOG_MAX_BACKUPS")); err == nil && n >= 0 {
		w.MaxBackups = n
	}
	return w
}

// logFilePath resolves STASH_TRIAGE_LOG_FILE, then $XDG_STATE_HOME, then ~/.local/state.
func logFilePath() (string, error) {
	if p := os.Getenv("STASH_TRIAGE_LOG_FILE"); p != "" {
		return p, nil
	}
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "stash-triage", "stash-triage.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "stash-triage", "stash-triage.log"), nil
}
