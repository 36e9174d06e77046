package linear

import (
	"context"
	"fmt"
)

// excludedStateTypes are the lifecycle categories the default issue
// listing hides. Callers opt back in with IncludeAll.
var excludedStateTypes = map[string]bool{
	"completed": true,
	"canceled":  true,
	"backlog":   true,
}

const defaultIssueLimit = 50

// ListIssuesParams narrows the issue listing. Team, Assignee, and State
// are human-readable names resolved before the query runs.
type ListIssuesParams struct {
	Team     string
	Assignee string
	State    string

	// IncludeAll keeps completed, canceled, and backlog issues in the
	// result instead of the default active-only view.
	IncludeAll bool

	Limit int
}

// ListIssues lists issues matching the params, newest update first. The
// default view excludes completed, canceled, and backlog issues.
func (c *Client) ListIssues(ctx context.Context, p ListIssuesParams) ([]Issue, error) {
	filter := map[string]any{}

	if p.Team != "" {
		team, err := c.resolveTeam(ctx, p.Team)
		if err != nil {
			return nil, err
		}
		filter["team"] = map[string]any{"id": map[string]any{"eq": team.ID}}
	}
	if p.Assignee != "" {
		user, err := c.resolveUser(ctx, p.Assignee)
		if err != nil {
			return nil, err
		}
		filter["assignee"] = map[string]any{"id": map[string]any{"eq": user.ID}}
	}
	if p.State != "" {
		filter["state"] = map[string]any{"name": map[string]any{"eq": p.State}}
	} else if !p.IncludeAll {
		filter["state"] = map[string]any{
			"type": map[string]any{"nin": []string{"completed", "canceled", "backlog"}},
		}
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultIssueLimit
	}

	vars := map[string]any{"first": limit}
	if len(filter) > 0 {
		vars["filter"] = filter
	}

	var data struct {
		Issues struct {
			Nodes []issueNode `json:"nodes"`
		} `json:"issues"`
	}
	if err := c.query(ctx, queryIssues, vars, &data); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(data.Issues.Nodes))
	for _, n := range data.Issues.Nodes {
		issue := n.flatten()
		// The same exclusion is applied locally so the default view
		// holds even when the upstream ignores the filter variable.
		if !p.IncludeAll && p.State == "" && excludedStateTypes[issue.StateType] {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// GetIssue fetches one issue with its comment thread. id accepts either
// the internal identifier or the human-readable one ("ENG-123").
func (c *Client) GetIssue(ctx context.Context, id string) (*IssueDetail, error) {
	var data struct {
		Issue *struct {
			issueNode
			Comments struct {
				Nodes []commentNode `json:"nodes"`
			} `json:"comments"`
		} `json:"issue"`
	}
	if err := c.query(ctx, queryIssue, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil {
		return nil, &NotFoundError{Kind: "issue", Name: id}
	}

	detail := &IssueDetail{Issue: data.Issue.flatten()}
	for _, n := range data.Issue.Comments.Nodes {
		detail.Comments = append(detail.Comments, n.flatten())
	}
	return detail, nil
}

// CreateIssueParams carries the human-readable inputs of an issue
// create. Team and Title are required; everything else is optional.
type CreateIssueParams struct {
	Team        string
	Title       string
	Description string
	Assignee    string
	State       string
	Project     string
	Labels      []string
	Priority    *int
}

// CreateIssue resolves every name parameter to an identifier and issues
// the create mutation. The team resolves first; the remaining lookups
// fan out concurrently since they are independent once the team is
// known.
func (c *Client) CreateIssue(ctx context.Context, p CreateIssueParams) (*Issue, error) {
	if p.Team == "" || p.Title == "" {
		return nil, fmt.Errorf("creating issue: team and title are required")
	}

	team, err := c.resolveTeam(ctx, p.Team)
	if err != nil {
		return nil, err
	}
	refs, err := c.resolveIssueRefs(ctx, team.ID, p.Assignee, p.State, p.Project, p.Labels)
	if err != nil {
		return nil, err
	}

	input := map[string]any{
		"teamId": team.ID,
		"title":  p.Title,
	}
	if p.Description != "" {
		input["description"] = p.Description
	}
	if refs.AssigneeID != "" {
		input["assigneeId"] = refs.AssigneeID
	}
	if refs.StateID != "" {
		input["stateId"] = refs.StateID
	}
	if refs.ProjectID != "" {
		input["projectId"] = refs.ProjectID
	}
	if len(refs.LabelIDs) > 0 {
		input["labelIds"] = refs.LabelIDs
	}
	if p.Priority != nil {
		input["priority"] = *p.Priority
	}

	var data struct {
		IssueCreate struct {
			Success bool       `json:"success"`
			Issue   *issueNode `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.query(ctx, mutationIssueCreate, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if !data.IssueCreate.Success || data.IssueCreate.Issue == nil {
		return nil, fmt.Errorf("creating issue: upstream reported failure")
	}

	issue := data.IssueCreate.Issue.flatten()
	return &issue, nil
}

// UpdateIssueParams carries the mutable fields of an issue update. Nil
// pointers leave a field untouched; set pointers overwrite it.
type UpdateIssueParams struct {
	ID          string
	Title       *string
	Description *string
	Assignee    *string
	State       *string
	Priority    *int
}

// UpdateIssue applies a partial update. When the status changes by
// name, the issue is fetched first to learn its team, since workflow
// states are scoped per team.
func (c *Client) UpdateIssue(ctx context.Context, p UpdateIssueParams) (*Issue, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("updating issue: id is required")
	}

	input := map[string]any{}
	if p.Title != nil {
		input["title"] = *p.Title
	}
	if p.Description != nil {
		input["description"] = *p.Description
	}
	if p.Priority != nil {
		input["priority"] = *p.Priority
	}
	if p.Assignee != nil {
		user, err := c.resolveUser(ctx, *p.Assignee)
		if err != nil {
			return nil, err
		}
		input["assigneeId"] = user.ID
	}
	if p.State != nil {
		current, err := c.GetIssue(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		team, err := c.resolveTeam(ctx, current.Team)
		if err != nil {
			return nil, err
		}
		state, err := c.resolveState(ctx, team.ID, *p.State)
		if err != nil {
			return nil, err
		}
		input["stateId"] = state.ID
	}
	if len(input) == 0 {
		return nil, fmt.Errorf("updating issue: no fields to update")
	}

	var data struct {
		IssueUpdate struct {
			Success bool       `json:"success"`
			Issue   *issueNode `json:"issue"`
		} `json:"issueUpdate"`
	}
	vars := map[string]any{"id": p.ID, "input": input}
	if err := c.query(ctx, mutationIssueUpdate, vars, &data); err != nil {
		return nil, err
	}
	if !data.IssueUpdate.Success || data.IssueUpdate.Issue == nil {
		return nil, fmt.Errorf("updating issue: upstream reported failure")
	}

	issue := data.IssueUpdate.Issue.flatten()
	return &issue, nil
}
