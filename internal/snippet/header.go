package snippet

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deixis/tomorin/internal/ctxlog"
)

// SplitHeader separates the leading crate-level directives of src from the
// rest. The header is any run of inner attributes (#![...]) and extern crate
// declarations, each optionally preceded by outer attributes, with the
// whitespace around them. Everything after it is the body.
//
// SplitHeader never fails. If a directive is left unterminated the split is
// ambiguous, and the whole input is returned as the body with a warning.
func SplitHeader(ctx context.Context, src string) (header, body string) {
	p := &headerParser{src: src}
	end := p.parse()
	if p.unterminated {
		ctxlog.FromContext(ctx).Warn("ambiguous snippet header, treating all input as body",
			"offset", p.pos)
		return "", src
	}
	return src[:end], src[end:]
}

type headerParser struct {
	src string
	pos int

	// unterminated records that an attribute ran to end of input without ']'.
	unterminated bool
}

func (p *headerParser) parse() int {
	p.spaces()
	for {
		start := p.pos
		if p.externCrate() {
			p.spaces()
			continue
		}
		p.pos = start
		if p.innerAttr() {
			p.spaces()
			continue
		}
		p.pos = start
		return start
	}
}

func (p *headerParser) peek() (rune, int) {
	if p.pos >= len(p.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(p.src[p.pos:])
}

// spaces skips whitespace and reports whether anything was skipped.
func (p *headerParser) spaces() bool {
	start := p.pos
	for {
		r, n := p.peek()
		if n == 0 || !unicode.IsSpace(r) {
			return p.pos > start
		}
		p.pos += n
	}
}

func (p *headerParser) token(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *headerParser) keyword(kw string) bool {
	if strings.HasPrefix(p.src[p.pos:], kw) {
		p.pos += len(kw)
		return true
	}
	return false
}

// attrContent matches '[' followed by anything up to the first ']'.
func (p *headerParser) attrContent() bool {
	if !p.token('[') {
		return false
	}
	i := strings.IndexByte(p.src[p.pos:], ']')
	if i < 0 {
		p.unterminated = true
		return false
	}
	p.pos += i + 1
	return true
}

// outerAttr matches '#' spaces '[...]'.
func (p *headerParser) outerAttr() bool {
	if !p.token('#') {
		return false
	}
	p.spaces()
	return p.attrContent()
}

// innerAttr matches '#' spaces '!' spaces '[...]'.
func (p *headerParser) innerAttr() bool {
	if !p.token('#') {
		return false
	}
	p.spaces()
	if !p.token('!') {
		return false
	}
	p.spaces()
	return p.attrContent()
}

// externCrate matches outer attributes followed by "extern crate name;".
func (p *headerParser) externCrate() bool {
	for {
		start := p.pos
		if !p.outerAttr() {
			p.pos = start
			break
		}
	}
	p.spaces()
	if !p.keyword("extern") || !p.spaces() || !p.keyword("crate") || !p.spaces() {
		return false
	}
	if !p.ident() {
		return false
	}
	p.spaces()
	return p.token(';')
}

func (p *headerParser) ident() bool {
	start := p.pos
	for {
		r, n := p.peek()
		if n == 0 || !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return p.pos > start
		}
		p.pos += n
	}
}
