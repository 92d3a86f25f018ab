package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/tomorin/internal/render"
	"github.com/deixis/tomorin/internal/runner"
)

type shellParams struct {
	Command string `json:"command" jsonschema:"the command line to run, e.g. 'uname -a'"`
}

// memoryEditor keeps the last report instead of sending it anywhere.
type memoryEditor struct {
	mu    sync.Mutex
	last  render.Report
	edits int
}

func (e *memoryEditor) Edit(_ context.Context, r render.Report) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.edits > 0 && e.last.Equal(r) {
		return render.ErrNotModified
	}
	e.last = r
	e.edits++
	return nil
}

func (h *handler) shellHandler(ctx context.Context, req *mcp.CallToolRequest, params shellParams) (*mcp.CallToolResult, any, error) {
	cmd := runner.ParseRequest(params.Command)
	if cmd.Program == "" {
		return errorResult("command is required")
	}

	ed := &memoryEditor{}
	res, err := h.runner.Run(ctx, cmd, ed)
	var spawnErr *runner.SpawnError
	switch {
	case errors.As(err, &spawnErr):
		return errorResult(res.Report.Text)
	case err != nil:
		return errorResult(fmt.Sprintf("command failed: %v", err))
	}

	var b strings.Builder
	b.WriteString(res.Report.Text)
	fmt.Fprintf(&b, "\n\nExit code: %d\n", res.ExitCode)
	fmt.Fprintf(&b, "Run: %s\n", res.RunID)
	return textResult(b.String())
}
