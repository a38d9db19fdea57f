package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color shortcuts.
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Dim    = color.New(color.FgHiBlack).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()

	// BoldBlue renders the action prompt; BoldRed the help legend and hard errors.
	BoldBlue = color.New(color.Bold, color.FgBlue).SprintFunc()
	BoldRed  = color.New(color.Bold, color.FgRed).SprintFunc()
)

// Glyphs used throughout the UI.
const (
	Pass   = "✓"
	Fail   = "✗"
	PushUp = "⬆"
)

// ColorMode is the user's color preference: "auto", "always" or "never".
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// SetColorMode overrides fatih/color's terminal detection.
// Unknown modes behave like auto.
func SetColorMode(mode ColorMode) {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	default:
		color.NoColor = os.Getenv("NO_COLOR") != "" || !IsTTY()
	}
}

// Truncate shortens a string to max runes, adding "…" if truncated.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// ErrorTo writes an error message with ✗ prefix.
func ErrorTo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, Red(Fail)+" "+format+"\n", args...)
}

// SuccessTo writes a success message with ✓ prefix.
func SuccessTo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, Green(Pass)+" "+format+"\n", args...)
}

// WarnTo writes a warning message.
func WarnTo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, Yellow("⚠")+"  "+format+"\n", args...)
}

// Success prints a success message with ✓ prefix.
func Success(format string, args ...any) {
	SuccessTo(os.Stdout, format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	WarnTo(os.Stdout, format, args...)
}

// IsTTY reports whether stdout is connected to a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
