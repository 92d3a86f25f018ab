// Package render turns accumulated command output into chat reports and
// pushes them to a live-editable message.
package render

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// Style tags a fixed-width region of a report.
type Style string

const (
	// StyleStdout marks output of a running or successful command.
	StyleStdout Style = "StdOut"
	// StyleStderr marks output of a failed command.
	StyleStderr Style = "StdErr"
	// StyleCode marks an inline code span.
	StyleCode Style = "code"
)

// Annotation marks Length characters starting at Offset as Style.
// Offsets and lengths count Unicode code points.
type Annotation struct {
	Offset int
	Length int
	Style  Style
}

// Report is the text of one chat message plus its annotations.
// When HTML is set, Text carries HTML markup and Annotations is empty.
type Report struct {
	Text        string
	Annotations []Annotation
	HTML        bool
}

// Block returns text as a single fixed-width block styled with style.
func Block(text string, style Style) Report {
	return Report{
		Text:        text,
		Annotations: []Annotation{{Offset: 0, Length: utf8.RuneCountInString(text), Style: style}},
	}
}

// Plain returns text without annotations.
func Plain(text string) Report {
	return Report{Text: text}
}

// HTML returns text to be interpreted as HTML markup.
func HTML(text string) Report {
	return Report{Text: text, HTML: true}
}

// Equal reports whether r and o would render identically.
func (r Report) Equal(o Report) bool {
	return r.Text == o.Text && r.HTML == o.HTML && slices.Equal(r.Annotations, o.Annotations)
}

// Editor replaces the content of one chat message.
//
// Implementations must return an error wrapping ErrNotModified when asked
// to set content identical to the current content.
type Editor interface {
	Edit(ctx context.Context, r Report) error
}

// ErrNotModified is returned by an Editor when the new content equals the old.
var ErrNotModified = errors.New("message is not modified")

// UpdateError is a failed push to an Editor other than ErrNotModified.
type UpdateError struct {
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("updating message: %v", e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
