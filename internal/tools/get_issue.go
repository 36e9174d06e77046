package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// GetIssueTool handles the linear_get_issue MCP tool.
type GetIssueTool struct {
	client *linear.Client
}

// NewGetIssueTool creates a GetIssueTool with the given client.
func NewGetIssueTool(client *linear.Client) *GetIssueTool {
	return &GetIssueTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetIssueTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_get_issue",
		mcp.WithDescription(
			"Fetch one Linear issue with its full comment thread. Accepts "+
				"either the issue UUID or the human-readable identifier "+
				"like 'ENG-123'.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Issue UUID or identifier (e.g. 'ENG-123')"),
		),
	)
}

// Handle processes the linear_get_issue tool call.
func (t *GetIssueTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	issue, err := t.client.GetIssue(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(issue)
}
