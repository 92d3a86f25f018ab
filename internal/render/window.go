package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DiscardHint precedes the kept tail when earlier lines were dropped.
const DiscardHint = "[earlier output discarded]"

// Window bounds the part of a buffer that is shown.
type Window struct {
	MaxLines int // lines kept from the end; <= 0 keeps everything
	MaxChars int // code points kept, hint included; <= 0 disables the budget
}

// Render keeps the last MaxLines lines, prepends DiscardHint if anything
// was dropped, and wraps the result as one block styled with style.
// It is a pure function of its arguments.
func (w Window) Render(lines []string, style Style) Report {
	kept := lines
	dropped := false
	if w.MaxLines > 0 && len(kept) > w.MaxLines {
		kept = kept[len(kept)-w.MaxLines:]
		dropped = true
	}

	if w.MaxChars > 0 {
		kept, dropped = w.fitChars(kept, dropped)
	}

	var b strings.Builder
	if dropped {
		b.WriteString(DiscardHint)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(kept, "\n"))

	text := strings.TrimRightFunc(b.String(), unicode.IsSpace)
	return Block(text, style)
}

// fitChars drops leading lines until the joined text, hint included, fits
// in MaxChars. A single remaining line that is still too long keeps its tail.
func (w Window) fitChars(kept []string, dropped bool) ([]string, bool) {
	size := func(lines []string, hint bool) int {
		n := len(lines) - 1
		for _, l := range lines {
			n += utf8.RuneCountInString(l)
		}
		if hint {
			n += utf8.RuneCountInString(DiscardHint) + 1
		}
		return n
	}

	for len(kept) > 1 && size(kept, dropped) > w.MaxChars {
		kept = kept[1:]
		dropped = true
	}
	if len(kept) == 1 && size(kept, dropped) > w.MaxChars {
		budget := max(w.MaxChars-utf8.RuneCountInString(DiscardHint)-1, 0)
		runes := []rune(kept[0])
		kept = []string{string(runes[len(runes)-budget:])}
		dropped = true
	}
	return kept, dropped
}
