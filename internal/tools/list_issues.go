package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// ListIssuesTool handles the linear_list_issues MCP tool.
type ListIssuesTool struct {
	client *linear.Client
}

// NewListIssuesTool creates a ListIssuesTool with the given client.
func NewListIssuesTool(client *linear.Client) *ListIssuesTool {
	return &ListIssuesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListIssuesTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_issues",
		mcp.WithDescription(
			"List Linear issues, newest update first. By default only active "+
				"issues are returned (completed, canceled, and backlog are "+
				"hidden); set include_all to see everything. Filters accept "+
				"human-readable names, not IDs.",
		),
		mcp.WithString("team",
			mcp.Description("Team name or key to filter by (e.g. 'Product' or 'PRD')"),
		),
		mcp.WithString("assignee",
			mcp.Description("Assignee name or email to filter by"),
		),
		mcp.WithString("state",
			mcp.Description("Issue status name to filter by (e.g. 'In Progress')"),
		),
		mcp.WithBoolean("include_all",
			mcp.Description("Include completed, canceled, and backlog issues (default false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of issues to return (default 50)"),
		),
	)
}

// Handle processes the linear_list_issues tool call.
func (t *ListIssuesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issues, err := t.client.ListIssues(ctx, linear.ListIssuesParams{
		Team:       strings.TrimSpace(req.GetString("team", "")),
		Assignee:   strings.TrimSpace(req.GetString("assignee", "")),
		State:      strings.TrimSpace(req.GetString("state", "")),
		IncludeAll: req.GetBool("include_all", false),
		Limit:      req.GetInt("limit", 0),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(issues)
}
