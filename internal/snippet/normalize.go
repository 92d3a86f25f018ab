// Package snippet turns a chat-submitted Rust fragment into a complete
// program for the playground.
package snippet

import "strings"

var punctuation = strings.NewReplacer(
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u2014", "--",
	"\u00a0", " ",
)

// Normalize replaces punctuation that phone keyboards substitute for ASCII
// (curly quotes, em-dash, no-break space) with the ASCII equivalents.
// Pure ASCII input is returned unchanged.
func Normalize(s string) string {
	if isASCII(s) {
		return s
	}
	return punctuation.Replace(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
