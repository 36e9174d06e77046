package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// WhoamiTool handles the linear_whoami MCP tool.
type WhoamiTool struct {
	client *linear.Client
}

// NewWhoamiTool creates a WhoamiTool with the given client.
func NewWhoamiTool(client *linear.Client) *WhoamiTool {
	return &WhoamiTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *WhoamiTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_whoami",
		mcp.WithDescription(
			"Return the authenticated Linear user (id, name, email). Also "+
				"a cheap way to verify that credentials are still valid.",
		),
	)
}

// Handle processes the linear_whoami tool call.
func (t *WhoamiTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	viewer, err := t.client.Viewer(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(viewer)
}
