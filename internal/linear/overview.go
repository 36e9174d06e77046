package linear

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkspaceOverview aggregates the viewer and every reference list in
// one shot. The five lookups are independent and fan out concurrently;
// the cached lists make repeated overviews nearly free within a TTL
// window.
func (c *Client) WorkspaceOverview(ctx context.Context) (*Overview, error) {
	var out Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		viewer, err := c.Viewer(ctx)
		if err != nil {
			return err
		}
		out.Viewer = viewer
		return nil
	})
	g.Go(func() error {
		teams, err := c.Teams(ctx)
		if err != nil {
			return err
		}
		out.Teams = teams
		return nil
	})
	g.Go(func() error {
		projects, err := c.Projects(ctx)
		if err != nil {
			return err
		}
		out.Projects = projects
		return nil
	})
	g.Go(func() error {
		initiatives, err := c.Initiatives(ctx)
		if err != nil {
			return err
		}
		out.Initiatives = initiatives
		return nil
	})
	g.Go(func() error {
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		out.Users = users
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
