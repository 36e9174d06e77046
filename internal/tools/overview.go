package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// OverviewTool handles the linear_workspace_overview MCP tool.
type OverviewTool struct {
	client *linear.Client
}

// NewOverviewTool creates an OverviewTool with the given client.
func NewOverviewTool(client *linear.Client) *OverviewTool {
	return &OverviewTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *OverviewTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_workspace_overview",
		mcp.WithDescription(
			"Aggregate the workspace in one call: the authenticated user "+
				"plus all teams, projects, initiatives, and members. Useful "+
				"as the first call of a session to learn the workspace "+
				"vocabulary.",
		),
	)
}

// Handle processes the linear_workspace_overview tool call.
func (t *OverviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	overview, err := t.client.WorkspaceOverview(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(overview)
}
