package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// The reference-list tools share one shape: no required parameters, one
// cached list call, JSON out. They exist so an agent can browse the
// workspace vocabulary before composing creates and updates by name.

// ListTeamsTool handles the linear_list_teams MCP tool.
type ListTeamsTool struct {
	client *linear.Client
}

// NewListTeamsTool creates a ListTeamsTool with the given client.
func NewListTeamsTool(client *linear.Client) *ListTeamsTool {
	return &ListTeamsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTeamsTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_teams",
		mcp.WithDescription("List the workspace's teams with their names and keys."),
	)
}

// Handle processes the linear_list_teams tool call.
func (t *ListTeamsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teams, err := t.client.Teams(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(teams)
}

// ListUsersTool handles the linear_list_users MCP tool.
type ListUsersTool struct {
	client *linear.Client
}

// NewListUsersTool creates a ListUsersTool with the given client.
func NewListUsersTool(client *linear.Client) *ListUsersTool {
	return &ListUsersTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListUsersTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_users",
		mcp.WithDescription("List the workspace's members with names, emails, and active flags."),
	)
}

// Handle processes the linear_list_users tool call.
func (t *ListUsersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := t.client.Users(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(users)
}

// ListLabelsTool handles the linear_list_labels MCP tool.
type ListLabelsTool struct {
	client *linear.Client
}

// NewListLabelsTool creates a ListLabelsTool with the given client.
func NewListLabelsTool(client *linear.Client) *ListLabelsTool {
	return &ListLabelsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListLabelsTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_labels",
		mcp.WithDescription("List the workspace's issue labels."),
	)
}

// Handle processes the linear_list_labels tool call.
func (t *ListLabelsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	labels, err := t.client.Labels(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(labels)
}

// ListProjectsTool handles the linear_list_projects MCP tool.
type ListProjectsTool struct {
	client *linear.Client
}

// NewListProjectsTool creates a ListProjectsTool with the given client.
func NewListProjectsTool(client *linear.Client) *ListProjectsTool {
	return &ListProjectsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_projects",
		mcp.WithDescription("List the workspace's projects with their lifecycle status."),
	)
}

// Handle processes the linear_list_projects tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.client.Projects(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(projects)
}

// ListInitiativesTool handles the linear_list_initiatives MCP tool.
type ListInitiativesTool struct {
	client *linear.Client
}

// NewListInitiativesTool creates a ListInitiativesTool with the given client.
func NewListInitiativesTool(client *linear.Client) *ListInitiativesTool {
	return &ListInitiativesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListInitiativesTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_initiatives",
		mcp.WithDescription("List the workspace's initiatives."),
	)
}

// Handle processes the linear_list_initiatives tool call.
func (t *ListInitiativesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	initiatives, err := t.client.Initiatives(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(initiatives)
}

// ListIssueStatusesTool handles the linear_list_issue_statuses MCP tool.
type ListIssueStatusesTool struct {
	client *linear.Client
}

// NewListIssueStatusesTool creates a ListIssueStatusesTool with the given client.
func NewListIssueStatusesTool(client *linear.Client) *ListIssueStatusesTool {
	return &ListIssueStatusesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListIssueStatusesTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_issue_statuses",
		mcp.WithDescription(
			"List the issue statuses (workflow states) of one team. "+
				"Statuses are scoped per team in Linear.",
		),
		mcp.WithString("team",
			mcp.Required(),
			mcp.Description("Team name or key whose statuses to list"),
		),
	)
}

// Handle processes the linear_list_issue_statuses tool call.
func (t *ListIssueStatusesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamName := strings.TrimSpace(req.GetString("team", ""))
	if teamName == "" {
		return mcp.NewToolResultError("'team' is required"), nil
	}

	states, err := t.client.IssueStatuses(ctx, teamName)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(states)
}
