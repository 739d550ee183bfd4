// Package tty detects whether scli is attached to an interactive terminal.
package tty

import (
	"io"

	"github.com/mattn/go-isatty"
)

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether v is a terminal. Anything that is not an
// *os.File (or lacks a file descriptor) is treated as non-interactive.
func IsTerminal(v any) bool {
	f, ok := v.(fder)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Interactive reports whether both in and out are terminals.
func Interactive(in io.Reader, out io.Writer) bool {
	return IsTerminal(in) && IsTerminal(out)
}
