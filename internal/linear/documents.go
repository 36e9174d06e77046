package linear

import (
	"context"
	"fmt"
)

const defaultDocumentLimit = 50

// ListDocumentsParams narrows the document listing.
type ListDocumentsParams struct {
	// IncludeArchived keeps archived documents in the result instead of
	// the default active-only view.
	IncludeArchived bool

	Limit int
}

// ListDocuments lists the workspace's documents. The default view
// excludes archived documents.
func (c *Client) ListDocuments(ctx context.Context, p ListDocumentsParams) ([]Document, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultDocumentLimit
	}

	var data struct {
		Documents struct {
			Nodes []documentNode `json:"nodes"`
		} `json:"documents"`
	}
	if err := c.query(ctx, queryDocuments, map[string]any{"first": limit}, &data); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(data.Documents.Nodes))
	for _, n := range data.Documents.Nodes {
		doc := n.flatten()
		if doc.Archived && !p.IncludeArchived {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetDocument fetches one document by id or slug.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var data struct {
		Document *documentNode `json:"document"`
	}
	if err := c.query(ctx, queryDocument, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Document == nil {
		return nil, &NotFoundError{Kind: "document", Name: id}
	}
	doc := data.Document.flatten()
	return &doc, nil
}

// CreateDocumentParams carries the inputs of a document create. Title
// is required; Project is a human-readable name resolved before the
// mutation runs.
type CreateDocumentParams struct {
	Title   string
	Content string
	Project string
}

// CreateDocument creates a document, optionally attached to a project
// resolved by name.
func (c *Client) CreateDocument(ctx context.Context, p CreateDocumentParams) (*Document, error) {
	if p.Title == "" {
		return nil, fmt.Errorf("creating document: title is required")
	}

	input := map[string]any{"title": p.Title}
	if p.Content != "" {
		input["content"] = p.Content
	}
	if p.Project != "" {
		project, err := c.resolveProject(ctx, p.Project)
		if err != nil {
			return nil, err
		}
		input["projectId"] = project.ID
	}

	var data struct {
		DocumentCreate struct {
			Success  bool          `json:"success"`
			Document *documentNode `json:"document"`
		} `json:"documentCreate"`
	}
	if err := c.query(ctx, mutationDocumentCreate, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if !data.DocumentCreate.Success || data.DocumentCreate.Document == nil {
		return nil, fmt.Errorf("creating document: upstream reported failure")
	}

	doc := data.DocumentCreate.Document.flatten()
	return &doc, nil
}

// UpdateDocumentParams carries the mutable fields of a document update.
// Nil pointers leave a field untouched.
type UpdateDocumentParams struct {
	ID      string
	Title   *string
	Content *string
}

// UpdateDocument applies a partial update to a document.
func (c *Client) UpdateDocument(ctx context.Context, p UpdateDocumentParams) (*Document, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("updating document: id is required")
	}

	input := map[string]any{}
	if p.Title != nil {
		input["title"] = *p.Title
	}
	if p.Content != nil {
		input["content"] = *p.Content
	}
	if len(input) == 0 {
		return nil, fmt.Errorf("updating document: no fields to update")
	}

	var data struct {
		DocumentUpdate struct {
			Success  bool          `json:"success"`
			Document *documentNode `json:"document"`
		} `json:"documentUpdate"`
	}
	vars := map[string]any{"id": p.ID, "input": input}
	if err := c.query(ctx, mutationDocumentUpdate, vars, &data); err != nil {
		return nil, err
	}
	if !data.DocumentUpdate.Success || data.DocumentUpdate.Document == nil {
		return nil, fmt.Errorf("updating document: upstream reported failure")
	}

	doc := data.DocumentUpdate.Document.flatten()
	return &doc, nil
}
