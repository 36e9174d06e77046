package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// CreateIssueTool handles the linear_create_issue MCP tool.
type CreateIssueTool struct {
	client *linear.Client
}

// NewCreateIssueTool creates a CreateIssueTool with the given client.
func NewCreateIssueTool(client *linear.Client) *CreateIssueTool {
	return &CreateIssueTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateIssueTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_create_issue",
		mcp.WithDescription(
			"Create a Linear issue. Team, assignee, status, project, and "+
				"labels are given as human-readable names and resolved to "+
				"IDs automatically; an unknown name fails the call without "+
				"creating anything.",
		),
		mcp.WithString("team",
			mcp.Required(),
			mcp.Description("Team name or key the issue belongs to"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Issue title"),
		),
		mcp.WithString("description",
			mcp.Description("Issue description in markdown"),
		),
		mcp.WithString("assignee",
			mcp.Description("Assignee name or email"),
		),
		mcp.WithString("state",
			mcp.Description("Issue status name (e.g. 'In Progress'); team default when omitted"),
		),
		mcp.WithString("project",
			mcp.Description("Project name to attach the issue to"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated label names"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority 0-4 (0 none, 1 urgent, 2 high, 3 normal, 4 low)"),
		),
	)
}

// Handle processes the linear_create_issue tool call.
func (t *CreateIssueTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	team := strings.TrimSpace(req.GetString("team", ""))
	title := strings.TrimSpace(req.GetString("title", ""))
	if team == "" || title == "" {
		return mcp.NewToolResultError("'team' and 'title' are required"), nil
	}

	params := linear.CreateIssueParams{
		Team:        team,
		Title:       title,
		Description: req.GetString("description", ""),
		Assignee:    strings.TrimSpace(req.GetString("assignee", "")),
		State:       strings.TrimSpace(req.GetString("state", "")),
		Project:     strings.TrimSpace(req.GetString("project", "")),
		Labels:      splitList(req.GetString("labels", "")),
	}
	if p := req.GetInt("priority", -1); p >= 0 {
		params.Priority = &p
	}

	issue, err := t.client.CreateIssue(ctx, params)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(issue)
}
