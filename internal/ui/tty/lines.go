package tty

import (
	"bufio"
	"io"
	"strings"
)

// LineReader hands out input one line at a time from a single buffer, so a
// menu and the prompts that follow it can share one stream without losing
// buffered input.
type LineReader struct {
	src io.Reader
	buf *bufio.Reader
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{src: r, buf: bufio.NewReader(r)}
}

// Lines returns r itself when it is already a LineReader, otherwise a new one.
func Lines(r io.Reader) *LineReader {
	if lr, ok := r.(*LineReader); ok {
		return lr
	}
	return NewLineReader(r)
}

// Source returns the stream under r when r is a LineReader. Terminal programs
// need the original file to switch it into raw mode.
func Source(r io.Reader) io.Reader {
	if lr, ok := r.(*LineReader); ok {
		return lr.src
	}
	return r
}

// Read reads from the shared buffer.
func (l *LineReader) Read(p []byte) (int, error) {
	return l.buf.Read(p)
}

// Fd forwards the descriptor of the underlying stream, if any, so terminal
// detection sees through the wrapper.
func (l *LineReader) Fd() uintptr {
	if f, ok := l.src.(fder); ok {
		return f.Fd()
	}
	return ^uintptr(0)
}

// ReadLine returns the next line without its line ending or surrounding
// spaces. A final line without a newline is returned before io.EOF.
func (l *LineReader) ReadLine() (string, error) {
	line, err := l.buf.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
