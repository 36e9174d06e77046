package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/linear"
)

// ListDocumentsTool handles the linear_list_documents MCP tool.
type ListDocumentsTool struct {
	client *linear.Client
}

// NewListDocumentsTool creates a ListDocumentsTool with the given client.
func NewListDocumentsTool(client *linear.Client) *ListDocumentsTool {
	return &ListDocumentsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListDocumentsTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_list_documents",
		mcp.WithDescription(
			"List Linear documents. Archived documents are hidden by "+
				"default; set include_archived to see them.",
		),
		mcp.WithBoolean("include_archived",
			mcp.Description("Include archived documents (default false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents to return (default 50)"),
		),
	)
}

// Handle processes the linear_list_documents tool call.
func (t *ListDocumentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := t.client.ListDocuments(ctx, linear.ListDocumentsParams{
		IncludeArchived: req.GetBool("include_archived", false),
		Limit:           req.GetInt("limit", 0),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(docs)
}

// GetDocumentTool handles the linear_get_document MCP tool.
type GetDocumentTool struct {
	client *linear.Client
}

// NewGetDocumentTool creates a GetDocumentTool with the given client.
func NewGetDocumentTool(client *linear.Client) *GetDocumentTool {
	return &GetDocumentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetDocumentTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_get_document",
		mcp.WithDescription("Fetch one Linear document with its full content."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document UUID or slug"),
		),
	)
}

// Handle processes the linear_get_document tool call.
func (t *GetDocumentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	doc, err := t.client.GetDocument(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(doc)
}

// CreateDocumentTool handles the linear_create_document MCP tool.
type CreateDocumentTool struct {
	client *linear.Client
}

// NewCreateDocumentTool creates a CreateDocumentTool with the given client.
func NewCreateDocumentTool(client *linear.Client) *CreateDocumentTool {
	return &CreateDocumentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateDocumentTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_create_document",
		mcp.WithDescription(
			"Create a Linear document, optionally attached to a project "+
				"given by name.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Document title"),
		),
		mcp.WithString("content",
			mcp.Description("Document content in markdown"),
		),
		mcp.WithString("project",
			mcp.Description("Project name to attach the document to"),
		),
	)
}

// Handle processes the linear_create_document tool call.
func (t *CreateDocumentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(req.GetString("title", ""))
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	doc, err := t.client.CreateDocument(ctx, linear.CreateDocumentParams{
		Title:   title,
		Content: req.GetString("content", ""),
		Project: strings.TrimSpace(req.GetString("project", "")),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(doc)
}

// UpdateDocumentTool handles the linear_update_document MCP tool.
type UpdateDocumentTool struct {
	client *linear.Client
}

// NewUpdateDocumentTool creates an UpdateDocumentTool with the given client.
func NewUpdateDocumentTool(client *linear.Client) *UpdateDocumentTool {
	return &UpdateDocumentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateDocumentTool) Definition() mcp.Tool {
	return mcp.NewTool("linear_update_document",
		mcp.WithDescription(
			"Update the title or content of an existing Linear document. "+
				"Only the fields provided are changed.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document UUID or slug"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("content",
			mcp.Description("New content in markdown"),
		),
	)
}

// Handle processes the linear_update_document tool call.
func (t *UpdateDocumentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	doc, err := t.client.UpdateDocument(ctx, linear.UpdateDocumentParams{
		ID:      id,
		Title:   optString(req, "title"),
		Content: optString(req, "content"),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(doc)
}
