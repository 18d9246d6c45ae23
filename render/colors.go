package render

import (
	"os"

	"golang.org/x/term"
)

// ANSI color codes
const (
	Reset    = "\x1b[0m"
	Bold     = "\x1b[1m"
	Dim      = "\x1b[2m"
	Red      = "\x1b[31m"
	Green    = "\x1b[32m"
	Yellow   = "\x1b[33m"
	Blue     = "\x1b[34m"
	Cyan     = "\x1b[36m"
	BoldBlue = "\x1b[1;34m"
)

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the terminal width, or 80 when undetectable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}
