// Package ui renders progress and results for the pdf-parser CLI.
package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	noColorFlag bool
	verboseFlag bool
)

// InitUI applies the color and verbose settings.
func InitUI(noColor, verbose bool) {
	noColorFlag = noColor
	verboseFlag = verbose

	if noColor || !IsTerminal() {
		color.NoColor = true
	}
}

// Verbose reports whether verbose output was requested
func Verbose() bool {
	return verboseFlag
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTerminal reports whether stderr is a terminal; progress bars and
// console logs go there.
func IsStderrTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
