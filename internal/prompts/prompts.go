// Package prompts implements the gateway's MCP prompts: canned
// workflows the host can offer the user as one-click starting points.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// TriagePrompt handles the linear-triage MCP prompt. It walks the AI
// through reviewing the active issues of one team.
type TriagePrompt struct{}

// NewTriagePrompt creates a TriagePrompt.
func NewTriagePrompt() *TriagePrompt {
	return &TriagePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *TriagePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("linear-triage",
		mcp.WithPromptDescription(
			"Triage a team's active Linear issues: review what's in "+
				"flight, flag stale or unassigned work, and suggest "+
				"priorities.",
		),
		mcp.WithArgument("team",
			mcp.ArgumentDescription("Team name or key to triage"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the linear-triage prompt request.
func (p *TriagePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	team := req.Params.Arguments["team"]
	return &mcp.GetPromptResult{
		Description: "Linear Issue Triage",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please triage the active Linear issues for team \"" + team + "\".\n\n" +
						"1. Call linear_list_issues with team=\"" + team + "\"\n" +
						"2. Group the issues by status and flag anything unassigned\n" +
						"3. Point out issues that look stale (no recent update)\n" +
						"4. Suggest what to tackle first and why",
				),
			},
		},
	}, nil
}

// StandupPrompt handles the linear-standup MCP prompt. It produces a
// short written update from the viewer's assigned issues.
type StandupPrompt struct{}

// NewStandupPrompt creates a StandupPrompt.
func NewStandupPrompt() *StandupPrompt {
	return &StandupPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StandupPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("linear-standup",
		mcp.WithPromptDescription(
			"Draft a standup update from your assigned Linear issues: "+
				"what's in progress, what's blocked, what's next.",
		),
	)
}

// Handle processes the linear-standup prompt request.
func (p *StandupPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Linear Standup Draft",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please draft my standup update from Linear.\n\n" +
						"1. Call linear_whoami to find my name\n" +
						"2. Call linear_list_issues filtered by my name as assignee\n" +
						"3. Write a short update with three sections: in progress, " +
						"blocked (if anything looks stuck), and up next\n" +
						"4. Keep it under ten lines — this goes in a chat channel",
				),
			},
		},
	}, nil
}
