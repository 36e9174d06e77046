package linear

import (
	"context"
	"fmt"
)

// CreateComment posts a comment on an issue. issue accepts either the
// internal identifier or the human-readable one; the issue is resolved
// first because the mutation needs the internal id.
func (c *Client) CreateComment(ctx context.Context, issue, body string) (*Comment, error) {
	if issue == "" || body == "" {
		return nil, fmt.Errorf("creating comment: issue and body are required")
	}

	detail, err := c.GetIssue(ctx, issue)
	if err != nil {
		return nil, err
	}

	input := map[string]any{
		"issueId": detail.ID,
		"body":    body,
	}

	var data struct {
		CommentCreate struct {
			Success bool         `json:"success"`
			Comment *commentNode `json:"comment"`
		} `json:"commentCreate"`
	}
	if err := c.query(ctx, mutationCommentCreate, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if !data.CommentCreate.Success || data.CommentCreate.Comment == nil {
		return nil, fmt.Errorf("creating comment: upstream reported failure")
	}

	comment := data.CommentCreate.Comment.flatten()
	return &comment, nil
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, id, body string) (*Comment, error) {
	if id == "" || body == "" {
		return nil, fmt.Errorf("updating comment: id and body are required")
	}

	var data struct {
		CommentUpdate struct {
			Success bool         `json:"success"`
			Comment *commentNode `json:"comment"`
		} `json:"commentUpdate"`
	}
	vars := map[string]any{"id": id, "input": map[string]any{"body": body}}
	if err := c.query(ctx, mutationCommentUpdate, vars, &data); err != nil {
		return nil, err
	}
	if !data.CommentUpdate.Success || data.CommentUpdate.Comment == nil {
		return nil, fmt.Errorf("updating comment: upstream reported failure")
	}

	comment := data.CommentUpdate.Comment.flatten()
	return &comment, nil
}
