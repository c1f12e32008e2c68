// Package ui prints notes and command results to a plain terminal, outside
// the interactive list.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	faint = "\033[2m"

	gray         = "\033[90m"
	red          = "\033[31m"
	green        = "\033[32m"
	yellow       = "\033[33m"
	blue         = "\033[34m"
	brightYellow = "\033[93m"
	magenta      = "\033[95m"
	cyan         = "\033[96m"
)

var (
	forceColor   bool
	disableColor bool
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

func colorEnabled() bool {
	if disableColor || current.Plain {
		return false
	}
	return forceColor || term.IsTerminal(os.Stdout.Fd())
}

// C wraps s in color when color output is on.
func C(color, s string) string {
	if color == "" || !colorEnabled() {
		return s
	}
	return color + s + reset
}

// Dim renders s faint.
func Dim(s string) string { return C(faint, s) }

func OK(w io.Writer, msg string)   { status(w, current.Checked, current.OKMark, msg) }
func Fail(w io.Writer, msg string) { status(w, current.Error, current.FailMark, msg) }
func Warn(w io.Writer, msg string) { status(w, current.Warn, current.WarnMark, msg) }

func status(w io.Writer, color, mark, msg string) {
	fmt.Fprintln(w, C(color, mark+" "+msg))
}
