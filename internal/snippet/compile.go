package snippet

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/deixis/tomorin/internal/ctxlog"
)

// Prelude is the block of convenience imports placed before the
// synthesized main function.
//
//go:embed prelude.rs
var Prelude string

// entryPoint marks a snippet that already defines its own main.
const entryPoint = "fn main()"

// CompileUnit is a snippet split into its crate-level header and body.
type CompileUnit struct {
	Header string
	Body   string

	// Verbatim is set when the snippet has its own entry point and is
	// sent as written. Header is empty and Body holds the whole source.
	Verbatim bool
}

// Prepare normalizes src and splits it for wrapping.
func Prepare(ctx context.Context, src string) CompileUnit {
	src = Normalize(src)
	if strings.Contains(src, entryPoint) {
		return CompileUnit{Body: src, Verbatim: true}
	}
	header, body := SplitHeader(ctx, src)
	ctxlog.FromContext(ctx).Debug("split snippet", "header", header, "body", body)
	return CompileUnit{Header: header, Body: body}
}

// Prints reports whether the body does its own printing.
func (u CompileUnit) Prints() bool {
	return strings.Contains(u.Body, "println!") || strings.Contains(u.Body, "print!")
}

// wrapped returns the statement that runs the body inside main.
func (u CompileUnit) wrapped() string {
	if u.Prints() {
		return fmt.Sprintf("{\n%s\n};", u.Body)
	}
	return fmt.Sprintf("println!(\"{:?}\", {\n        %s\n    });", u.Body)
}

// Code returns the complete program text.
func (u CompileUnit) Code() string {
	if u.Verbatim {
		return u.Body
	}
	var b strings.Builder
	b.WriteString("#![allow(warnings)]\n")
	b.WriteString(u.Header)
	b.WriteString("\n")
	b.WriteString(Prelude)
	b.WriteString("\n")
	b.WriteString("fn main() -> Result<(), Box<dyn std::error::Error>> {\n")
	b.WriteString("    " + u.wrapped() + "\n")
	b.WriteString("    Ok(())\n")
	b.WriteString("}\n")
	return b.String()
}
