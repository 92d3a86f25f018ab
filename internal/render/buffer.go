package render

import (
	"strings"
	"unicode"
)

// Channel identifies the stream a line was read from.
type Channel int

const (
	Stdout Channel = iota
	Stderr
)

func (c Channel) String() string {
	if c == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Line is one line of output.
type Line struct {
	Channel Channel
	Text    string
}

// Buffer accumulates the lines of one execution in arrival order.
// It is owned by a single goroutine and is not safe for concurrent use.
type Buffer struct {
	header string
	lines  []Line
}

// NewBuffer returns a Buffer whose first line is header.
func NewBuffer(header string) *Buffer {
	return &Buffer{header: header}
}

// Append adds line, with trailing whitespace removed, to the buffer.
// Leading whitespace is kept so indented output stays aligned.
func (b *Buffer) Append(ch Channel, line string) {
	b.lines = append(b.lines, Line{Channel: ch, Text: strings.TrimRightFunc(line, unicode.IsSpace)})
}

// Len returns the number of appended lines, excluding the header.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Count returns the number of appended lines read from ch.
func (b *Buffer) Count(ch Channel) int {
	n := 0
	for _, l := range b.lines {
		if l.Channel == ch {
			n++
		}
	}
	return n
}

// Lines returns the header followed by every appended line.
func (b *Buffer) Lines() []string {
	out := make([]string, 0, len(b.lines)+1)
	out = append(out, b.header)
	for _, l := range b.lines {
		out = append(out, l.Text)
	}
	return out
}
