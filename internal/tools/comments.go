package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// CreateCommentTool handles the linear_create_comment MCP tool.
type CreateCommentTool struct {
	client *linear.Client
}

// NewCreateCommentTool creates a CreateCommentTool with the given client.
func NewCreateCommentTool(client *linear.Client) *CreateCommentTool {
	return &CreateCommentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_create_comment",
		mcp.WithDescription(
			"Post a comment on a Linear issue. The issue is given by UUID "+
				"or identifier like 'ENG-123'.",
		),
		mcp.WithString("issue",
			mcp.Required(),
			mcp.Description("Issue UUID or identifier to comment on"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Comment body in markdown"),
		),
	)
}

// Handle processes the linear_create_comment tool call.
func (t *CreateCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issue := strings.TrimSpace(req.GetString("issue", ""))
	body := req.GetString("body", "")
	if issue == "" || strings.TrimSpace(body) == "" {
		return mcp.NewToolResultError("'issue' and 'body' are required"), nil
	}

	comment, err := t.client.CreateComment(ctx, issue, body)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(comment)
}

// UpdateCommentTool handles the linear_update_comment MCP tool.
type UpdateCommentTool struct {
	client *linear.Client
}

// NewUpdateCommentTool creates an UpdateCommentTool with the given client.
func NewUpdateCommentTool(client *linear.Client) *UpdateCommentTool {
	return &UpdateCommentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_update_comment",
		mcp.WithDescription("Replace the body of an existing Linear comment."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Comment UUID"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("New comment body in markdown"),
		),
	)
}

// Handle processes the linear_update_comment tool call.
func (t *UpdateCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	body := req.GetString("body", "")
	if id == "" || strings.TrimSpace(body) == "" {
		return mcp.NewToolResultError("'id' and 'body' are required"), nil
	}

	comment, err := t.client.UpdateComment(ctx, id, body)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(comment)
}
