package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// UpdateIssueTool handles the linear_update_issue MCP tool.
type UpdateIssueTool struct {
	client *linear.Client
}

// NewUpdateIssueTool creates an UpdateIssueTool with the given client.
func NewUpdateIssueTool(client *linear.Client) *UpdateIssueTool {
	return &UpdateIssueTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateIssueTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_update_issue",
		mcp.WithDescription(
			"Update fields of an existing Linear issue. Only the fields "+
				"provided are changed; assignee and status accept "+
				"human-readable names.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Issue UUID or identifier (e.g. 'ENG-123')"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New description in markdown"),
		),
		mcp.WithString("assignee",
			mcp.Description("New assignee name or email"),
		),
		mcp.WithString("state",
			mcp.Description("New issue status name"),
		),
		mcp.WithNumber("priority",
			mcp.Description("New priority 0-4"),
		),
	)
}

// Handle processes the linear_update_issue tool call.
func (t *UpdateIssueTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	params := linear.UpdateIssueParams{
		ID:          id,
		Title:       optString(req, "title"),
		Description: optString(req, "description"),
		Assignee:    optString(req, "assignee"),
		State:       optString(req, "state"),
	}
	if p := req.GetInt("priority", -1); p >= 0 {
		params.Priority = &p
	}

	issue, err := t.client.UpdateIssue(ctx, params)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(issue)
}
