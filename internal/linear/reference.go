package linear

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lineargate/lineargate/internal/refcache"
)

// Teams lists the workspace's teams, cached for the default TTL.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	return refcache.Fetch(ctx, c.cache, "teams", 0, func(ctx context.Context) ([]Team, error) {
		var data struct {
			Teams struct {
				Nodes []Team `json:"nodes"`
			} `json:"teams"`
		}
		if err := c.query(ctx, queryTeams, nil, &data); err != nil {
			return nil, err
		}
		return data.Teams.Nodes, nil
	})
}

// Users lists the workspace's members, cached for the default TTL.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	return refcache.Fetch(ctx, c.cache, "users", 0, func(ctx context.Context) ([]User, error) {
		var data struct {
			Users struct {
				Nodes []User `json:"nodes"`
			} `json:"users"`
		}
		if err := c.query(ctx, queryUsers, nil, &data); err != nil {
			return nil, err
		}
		return data.Users.Nodes, nil
	})
}

// Projects lists the workspace's projects, cached for the default TTL.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return refcache.Fetch(ctx, c.cache, "projects", 0, func(ctx context.Context) ([]Project, error) {
		var data struct {
			Projects struct {
				Nodes []Project `json:"nodes"`
			} `json:"projects"`
		}
		if err := c.query(ctx, queryProjects, nil, &data); err != nil {
			return nil, err
		}
		return data.Projects.Nodes, nil
	})
}

// Initiatives lists the workspace's initiatives, cached for the default
// TTL.
func (c *Client) Initiatives(ctx context.Context) ([]Initiative, error) {
	return refcache.Fetch(ctx, c.cache, "initiatives", 0, func(ctx context.Context) ([]Initiative, error) {
		var data struct {
			Initiatives struct {
				Nodes []Initiative `json:"nodes"`
			} `json:"initiatives"`
		}
		if err := c.query(ctx, queryInitiatives, nil, &data); err != nil {
			return nil, err
		}
		return data.Initiatives.Nodes, nil
	})
}

// Labels lists the workspace's issue labels, cached for the default TTL.
func (c *Client) Labels(ctx context.Context) ([]Label, error) {
	return refcache.Fetch(ctx, c.cache, "labels", 0, func(ctx context.Context) ([]Label, error) {
		var data struct {
			IssueLabels struct {
				Nodes []Label `json:"nodes"`
			} `json:"issueLabels"`
		}
		if err := c.query(ctx, queryLabels, nil, &data); err != nil {
			return nil, err
		}
		return data.IssueLabels.Nodes, nil
	})
}

// WorkflowStates lists the issue statuses of one team, cached per team.
func (c *Client) WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error) {
	return refcache.Fetch(ctx, c.cache, "states:"+teamID, 0, func(ctx context.Context) ([]WorkflowState, error) {
		var data struct {
			WorkflowStates struct {
				Nodes []WorkflowState `json:"nodes"`
			} `json:"workflowStates"`
		}
		vars := map[string]any{"teamId": teamID}
		if err := c.query(ctx, queryWorkflowStates, vars, &data); err != nil {
			return nil, err
		}
		return data.WorkflowStates.Nodes, nil
	})
}

// IssueStatuses lists one team's workflow states by team name, since
// statuses are scoped per team.
func (c *Client) IssueStatuses(ctx context.Context, teamName string) ([]WorkflowState, error) {
	team, err := c.resolveTeam(ctx, teamName)
	if err != nil {
		return nil, err
	}
	return c.WorkflowStates(ctx, team.ID)
}

// --- name resolution ---
//
// Resolution is an exact-name linear scan over the cached reference
// list. Names are assumed unique by convention; an ambiguous name
// resolves to the first match. A miss is a NotFoundError naming the
// resource and its kind.

func (c *Client) resolveTeam(ctx context.Context, name string) (Team, error) {
	teams, err := c.Teams(ctx)
	if err != nil {
		return Team{}, err
	}
	for _, t := range teams {
		if t.Name == name || t.Key == name {
			return t, nil
		}
	}
	return Team{}, &NotFoundError{Kind: "team", Name: name}
}

func (c *Client) resolveUser(ctx context.Context, name string) (User, error) {
	users, err := c.Users(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.Name == name || u.Email == name {
			return u, nil
		}
	}
	return User{}, &NotFoundError{Kind: "user", Name: name}
}

func (c *Client) resolveProject(ctx context.Context, name string) (Project, error) {
	projects, err := c.Projects(ctx)
	if err != nil {
		return Project{}, err
	}
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	return Project{}, &NotFoundError{Kind: "project", Name: name}
}

func (c *Client) resolveLabel(ctx context.Context, name string) (Label, error) {
	labels, err := c.Labels(ctx)
	if err != nil {
		return Label{}, err
	}
	for _, l := range labels {
		if l.Name == name {
			return l, nil
		}
	}
	return Label{}, &NotFoundError{Kind: "label", Name: name}
}

func (c *Client) resolveState(ctx context.Context, teamID, name string) (WorkflowState, error) {
	states, err := c.WorkflowStates(ctx, teamID)
	if err != nil {
		return WorkflowState{}, err
	}
	for _, s := range states {
		if s.Name == name {
			return s, nil
		}
	}
	return WorkflowState{}, &NotFoundError{Kind: "issue status", Name: name}
}

// resolveIssueRefs resolves the optional name parameters of an issue
// create or update. The team must already be known; the remaining
// lookups are independent of each other and run concurrently.
type issueRefs struct {
	AssigneeID string
	StateID    string
	ProjectID  string
	LabelIDs   []string
}

func (c *Client) resolveIssueRefs(ctx context.Context, teamID, assignee, state, project string, labels []string) (issueRefs, error) {
	var refs issueRefs
	g, ctx := errgroup.WithContext(ctx)

	if assignee != "" {
		g.Go(func() error {
			u, err := c.resolveUser(ctx, assignee)
			if err != nil {
				return err
			}
			refs.AssigneeID = u.ID
			return nil
		})
	}
	if state != "" {
		g.Go(func() error {
			s, err := c.resolveState(ctx, teamID, state)
			if err != nil {
				return err
			}
			refs.StateID = s.ID
			return nil
		})
	}
	if project != "" {
		g.Go(func() error {
			p, err := c.resolveProject(ctx, project)
			if err != nil {
				return err
			}
			refs.ProjectID = p.ID
			return nil
		})
	}
	if len(labels) > 0 {
		g.Go(func() error {
			ids := make([]string, len(labels))
			for i, name := range labels {
				l, err := c.resolveLabel(ctx, name)
				if err != nil {
					return err
				}
				ids[i] = l.ID
			}
			refs.LabelIDs = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return issueRefs{}, err
	}
	return refs, nil
}
