package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/tomorin/internal/report"
	"github.com/deixis/tomorin/internal/snippet"
)

type evalParams struct {
	Code     string `json:"code" jsonschema:"Rust source: an expression, statements that print, or a full program"`
	Truncate bool   `json:"truncate,omitempty" jsonschema:"cut output to 3 lines as in group chats. Default: false."`
}

func (h *handler) evalHandler(ctx context.Context, req *mcp.CallToolRequest, params evalParams) (*mcp.CallToolResult, any, error) {
	if params.Code == "" {
		return errorResult("code is required")
	}
	if h.evaluator == nil {
		return errorResult("eval is not configured")
	}

	u := snippet.Prepare(ctx, params.Code)
	res, err := h.evaluator.Execute(ctx, u)
	if err != nil {
		return errorResult(fmt.Sprintf("playground request failed: %v", err))
	}
	return textResult(report.Format(res, h.evaluator.ChannelName(), !params.Truncate))
}
