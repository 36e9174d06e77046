// Package linear implements the domain operations against the Linear
// GraphQL schema: reference-data listing with cached name→ID resolution,
// issue and document CRUD, comments, and the workspace overview
// aggregation. Outputs are flattened one level so related names (team,
// project, assignee) appear as sibling fields instead of nested objects.
package linear

import "fmt"

// NotFoundError reports a human-readable name that did not resolve to
// any reference record. It is fatal to the operation and never retried.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Team is a reference record for name→ID resolution.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// User is a reference record. Active distinguishes current members from
// deactivated ones that still appear in historical data.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// Project is a reference record. Status is Linear's project state
// ("planned", "started", "completed", ...).
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Initiative is a reference record.
type Initiative struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Label is a reference record.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// WorkflowState is a per-team issue status. Type is the lifecycle
// category ("backlog", "unstarted", "started", "completed", "canceled").
type WorkflowState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Issue is the flattened read model for a Linear issue.
type Issue struct {
	ID          string   `json:"id"`
	Identifier  string   `json:"identifier"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    int      `json:"priority"`
	State       string   `json:"state,omitempty"`
	StateType   string   `json:"stateType,omitempty"`
	Team        string   `json:"team,omitempty"`
	TeamKey     string   `json:"teamKey,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Project     string   `json:"project,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	URL         string   `json:"url,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// IssueDetail is an Issue plus its comment thread, returned by GetIssue.
type IssueDetail struct {
	Issue
	Comments []Comment `json:"comments,omitempty"`
}

// Comment is the flattened read model for an issue comment.
type Comment struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	User      string `json:"user,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Document is the flattened read model for a Linear document.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Project   string `json:"project,omitempty"`
	Creator   string `json:"creator,omitempty"`
	URL       string `json:"url,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Overview aggregates the workspace's reference data in one shot.
type Overview struct {
	Viewer      User         `json:"viewer"`
	Teams       []Team       `json:"teams"`
	Projects    []Project    `json:"projects"`
	Initiatives []Initiative `json:"initiatives"`
	Users       []User       `json:"users"`
}

// --- wire types: the nested shapes Linear returns, flattened by the
// --- helpers below before leaving this package.

type stateRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type nameRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
}

type issueNode struct {
	ID          string  `json:"id"`
	Identifier  string  `json:"identifier"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    float64 `json:"priority"`
	URL         string  `json:"url"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`

	State    *stateRef `json:"state"`
	Team     *nameRef  `json:"team"`
	Assignee *nameRef  `json:"assignee"`
	Project  *nameRef  `json:"project"`
	Labels   struct {
		Nodes []nameRef `json:"nodes"`
	} `json:"labels"`
}

func (n issueNode) flatten() Issue {
	out := Issue{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Title:       n.Title,
		Description: n.Description,
		Priority:    int(n.Priority),
		URL:         n.URL,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
	if n.State != nil {
		out.State = n.State.Name
		out.StateType = n.State.Type
	}
	if n.Team != nil {
		out.Team = n.Team.Name
		out.TeamKey = n.Team.Key
	}
	if n.Assignee != nil {
		out.Assignee = n.Assignee.Name
	}
	if n.Project != nil {
		out.Project = n.Project.Name
	}
	for _, l := range n.Labels.Nodes {
		out.Labels = append(out.Labels, l.Name)
	}
	return out
}

type commentNode struct {
	ID        string   `json:"id"`
	Body      string   `json:"body"`
	URL       string   `json:"url"`
	CreatedAt string   `json:"createdAt"`
	User      *nameRef `json:"user"`
}

func (n commentNode) flatten() Comment {
	out := Comment{
		ID:        n.ID,
		Body:      n.Body,
		URL:       n.URL,
		CreatedAt: n.CreatedAt,
	}
	if n.User != nil {
		out.User = n.User.Name
	}
	return out
}

type documentNode struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	URL        string   `json:"url"`
	ArchivedAt string   `json:"archivedAt"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
	Project    *nameRef `json:"project"`
	Creator    *nameRef `json:"creator"`
}

func (n documentNode) flatten() Document {
	out := Document{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		URL:       n.URL,
		Archived:  n.ArchivedAt != "",
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if n.Project != nil {
		out.Project = n.Project.Name
	}
	if n.Creator != nil {
		out.Creator = n.Creator.Name
	}
	return out
}
