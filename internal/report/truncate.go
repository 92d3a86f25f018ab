package report

import (
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated output.
const Ellipsis = "..."

var cjk = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = true
	return c
}()

// Width returns the display width of r with ambiguous characters counted
// as wide. Control characters count as one column.
func Width(r rune) int {
	if unicode.IsControl(r) {
		return 1
	}
	return cjk.RuneWidth(r)
}

// StringWidth sums Width over s.
func StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += Width(r)
	}
	return n
}

// Truncate cuts s at its maxLines-th newline or once its display width
// passes maxCols, and marks the cut with an ellipsis. When cutting for
// width, at least three columns are given back so the result stays within
// maxCols.
func Truncate(s string, maxLines, maxCols int) string {
	lines, cols := 0, 0
	for pos, r := range s {
		cols += Width(r)
		if cols > maxCols {
			back := 0
			for i := pos; i > 0; {
				c, n := utf8.DecodeLastRuneInString(s[:i])
				i -= n
				back += Width(c)
				if back >= len(Ellipsis) {
					return s[:i] + Ellipsis
				}
			}
		}
		if r == '\n' {
			lines++
			if lines == maxLines {
				return s[:pos] + Ellipsis
			}
		}
	}
	return s
}
