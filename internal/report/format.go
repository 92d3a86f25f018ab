// Package report formats playground results as short Telegram HTML.
package report

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/deixis/tomorin/internal/playground"
)

// Limits applied to output shown outside private chats.
const (
	MaxLines   = 3
	MaxColumns = MaxLines * 72
)

// Placeholders for results with nothing to show.
const (
	NoOutput  = "(no output)"
	NoMessage = "(nothing??)"
)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape escapes &, < and > for Telegram HTML text.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Format renders res for a chat. Successful output is trimmed, truncated
// unless private is set, and escaped. Failed builds are reduced to their
// most relevant stderr line with links added. channel names the release
// channel for error index links.
func Format(res playground.Result, channel string, private bool) string {
	if !res.Success {
		return formatFailure(res.Stderr, channel)
	}
	out := strings.TrimSpace(res.Stdout)
	if !private {
		out = Truncate(out, MaxLines, MaxColumns)
	}
	if out == "" {
		return NoOutput
	}
	return Escape(out)
}

var (
	errorCode = regexp.MustCompile(`^error\[(E\d{4})\]:`)
	codeSpan  = regexp.MustCompile("`(.+?)`")
	issueRef  = regexp.MustCompile(`\(see issue #(\d+)\)`)
)

var noise = []string{"Compiling", "Finished", "Running"}

// SelectLine picks the stderr line that best explains a failed build: the
// first line starting with "error", else the first line that is not build
// progress. It returns false if stderr holds neither.
func SelectLine(stderr string) (string, bool) {
	var first string
	for line := range strings.SplitSeq(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hasAnyPrefix(line, noise) {
			continue
		}
		if strings.HasPrefix(line, "error") {
			return line, true
		}
		if first == "" {
			first = line
		}
	}
	return first, first != ""
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func formatFailure(stderr, channel string) string {
	line, ok := SelectLine(stderr)
	if !ok {
		return NoMessage
	}
	line = Escape(line)

	line = errorCode.ReplaceAllStringFunc(line, func(m string) string {
		code := errorCode.FindStringSubmatch(m)[1]
		url := fmt.Sprintf("https://doc.rust-lang.org/%s/error-index.html#%s", channel, code)
		return fmt.Sprintf(`error<a href="%s">[%s]</a>:`, html.EscapeString(url), code)
	})
	line = codeSpan.ReplaceAllString(line, "<code>${1}</code>")
	if loc := issueRef.FindStringSubmatchIndex(line); loc != nil {
		n := line[loc[2]:loc[3]]
		link := fmt.Sprintf(`(see issue <a href="https://github.com/rust-lang/rust/issues/%s">#%s</a>)`, n, n)
		line = line[:loc[0]] + link + line[loc[1]:]
	}
	return line
}
