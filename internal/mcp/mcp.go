// Package mcp exposes the shell runner and the Rust evaluator as MCP tools.
package mcp

import (
	"context"
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/tomorin"
	"github.com/deixis/tomorin/internal/playground"
	"github.com/deixis/tomorin/internal/runner"
	"github.com/deixis/tomorin/internal/snippet"
)

//go:embed instructions.md
var Instructions string

// Evaluator runs Rust snippets remotely.
type Evaluator interface {
	Execute(ctx context.Context, u snippet.CompileUnit) (playground.Result, error)
	ChannelName() string
}

// handler holds shared dependencies for all tool handlers.
type handler struct {
	runner    *runner.Runner
	evaluator Evaluator
}

// NewServer creates an MCP server with the shell and eval tools registered.
func NewServer(r *runner.Runner, ev Evaluator) *mcp.Server {
	h := &handler{runner: r, evaluator: ev}

	s := mcp.NewServer(&mcp.Implementation{Name: "tomorin", Version: tomorin.Version}, &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "shell",
		Description: `Run a command on the host and return its output.

The command is split on whitespace; the first field is the program. Output is the
last rendered window of interleaved stdout and stderr, ending with "Done." or the
exit status.`,
	}, h.shellHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "eval",
		Description: `Evaluate a Rust snippet on the Rust playground.

Bare expressions are printed with {:?}. Snippets that print are run as a block.
Snippets with their own fn main() are sent unchanged.`,
	}, h.evalHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
