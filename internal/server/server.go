// Package server wires the gateway together and creates the MCP server
// instance.
//
// This is the composition root: it opens the credential store, builds
// the token manager for the configured identity, stacks the GraphQL
// transport and domain client on top, and registers every tool. No
// business logic lives here, only wiring.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lineargate/lineargate/internal/config"
	"github.com/lineargate/lineargate/internal/credstore"
	"github.com/lineargate/lineargate/internal/graphql"
	"github.com/lineargate/lineargate/internal/linear"
	"github.com/lineargate/lineargate/internal/prompts"
	"github.com/lineargate/lineargate/internal/resources"
	"github.com/lineargate/lineargate/internal/token"
	"github.com/lineargate/lineargate/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// OAuthIdentity is the storage key for the interactive OAuth session.
// The credential database lives under the user's config directory, so
// one OAuth identity per database is the expected shape; the auth
// command and the server must agree on this key.
const OAuthIdentity = "oauth:user"

// StaticIdentity derives the storage key for a static API key. Keyed by
// a hash prefix so switching keys never reuses a stale credential row.
func StaticIdentity(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return "apikey:" + hex.EncodeToString(sum[:4])
}

// New creates and configures the MCP server with every tool registered.
// The returned cleanup function closes the credential store and must be
// called on shutdown (typically via defer). It is always non-nil.
func New(cfg *config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	// --- Credential store ---

	store, err := credstore.Open(cfg.DBPath, cfg.EncryptionSecret, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("opening credential store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing credential store", "error", err)
		}
	}

	// --- Token lifecycle ---
	//
	// Static-key mode registers a non-expiring set up front and never
	// refreshes; OAuth mode serves whatever the auth command persisted.

	var manager *token.Manager
	if cfg.StaticKeyMode() {
		identity := StaticIdentity(cfg.APIKey)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := token.RegisterStaticKey(ctx, store, identity, cfg.APIKey, nil); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("registering api key: %w", err)
		}
		manager = token.NewManager(identity, store, token.Endpoint{}, false,
			token.WithLogger(logger))
		logger.Info("authenticating with static api key", "identity", identity)
	} else {
		manager = token.NewManager(OAuthIdentity, store, token.Endpoint{
			TokenURL:     cfg.TokenURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		}, true, token.WithLogger(logger))
	}

	// --- Transport and domain client ---

	gql := graphql.NewClient(cfg.APIURL,
		graphql.WithRateLimit(5, 10),
		graphql.WithLogger(logger),
	)
	client := linear.NewClient(gql, manager, linear.WithLogger(logger))

	// --- MCP server ---

	s := server.NewMCPServer(
		"lineargate",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTools(s, client)

	// --- Prompts ---

	triagePrompt := prompts.NewTriagePrompt()
	s.AddPrompt(triagePrompt.Definition(), triagePrompt.Handle)

	standupPrompt := prompts.NewStandupPrompt()
	s.AddPrompt(standupPrompt.Definition(), standupPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(cfg, Version)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is the default cleanup when initialization fails early.
func noop() {}

// registerTools registers all 18 Linear tools with the server.
func registerTools(s *server.MCPServer, client *linear.Client) {
	// --- Issues ---
	listIssues := tools.NewListIssuesTool(client)
	s.AddTool(listIssues.Definition(), listIssues.Handle)

	getIssue := tools.NewGetIssueTool(client)
	s.AddTool(getIssue.Definition(), getIssue.Handle)

	createIssue := tools.NewCreateIssueTool(client)
	s.AddTool(createIssue.Definition(), createIssue.Handle)

	updateIssue := tools.NewUpdateIssueTool(client)
	s.AddTool(updateIssue.Definition(), updateIssue.Handle)

	// --- Comments ---
	createComment := tools.NewCreateCommentTool(client)
	s.AddTool(createComment.Definition(), createComment.Handle)

	updateComment := tools.NewUpdateCommentTool(client)
	s.AddTool(updateComment.Definition(), updateComment.Handle)

	// --- Documents ---
	listDocuments := tools.NewListDocumentsTool(client)
	s.AddTool(listDocuments.Definition(), listDocuments.Handle)

	getDocument := tools.NewGetDocumentTool(client)
	s.AddTool(getDocument.Definition(), getDocument.Handle)

	createDocument := tools.NewCreateDocumentTool(client)
	s.AddTool(createDocument.Definition(), createDocument.Handle)

	updateDocument := tools.NewUpdateDocumentTool(client)
	s.AddTool(updateDocument.Definition(), updateDocument.Handle)

	// --- Reference data ---
	listTeams := tools.NewListTeamsTool(client)
	s.AddTool(listTeams.Definition(), listTeams.Handle)

	listUsers := tools.NewListUsersTool(client)
	s.AddTool(listUsers.Definition(), listUsers.Handle)

	listLabels := tools.NewListLabelsTool(client)
	s.AddTool(listLabels.Definition(), listLabels.Handle)

	listProjects := tools.NewListProjectsTool(client)
	s.AddTool(listProjects.Definition(), listProjects.Handle)

	listInitiatives := tools.NewListInitiativesTool(client)
	s.AddTool(listInitiatives.Definition(), listInitiatives.Handle)

	listStatuses := tools.NewListIssueStatusesTool(client)
	s.AddTool(listStatuses.Definition(), listStatuses.Handle)

	// --- Workspace ---
	overview := tools.NewOverviewTool(client)
	s.AddTool(overview.Definition(), overview.Handle)

	whoami := tools.NewWhoamiTool(client)
	s.AddTool(whoami.Definition(), whoami.Handle)
}

// serverInstructions tells the AI how to use the gateway effectively.
func serverInstructions() string {
	return `You have access to lineargate, a Linear MCP gateway.

## Working with names, not IDs

Every tool that takes a team, assignee, status, project, or label
accepts the human-readable NAME (e.g. team "Product", status
"In Progress"). The gateway resolves names to IDs internally. If a name
does not exist, the call fails and tells you which name was unknown —
list the relevant resource to see the valid names.

## Recommended session start

1. Call linear_workspace_overview once to learn the workspace
   vocabulary: teams, projects, initiatives, and members.
2. Use linear_list_issue_statuses for a team before setting statuses —
   statuses are scoped per team and differ between teams.

## Listing behavior

- linear_list_issues hides completed, canceled, and backlog issues by
  default. Pass include_all=true to see everything.
- linear_list_documents hides archived documents by default. Pass
  include_archived=true to see them.

## Authentication

Credentials are managed outside the tool calls. If a call reports that
authentication is required, tell the user to run "lineargate auth" in a
terminal and retry afterwards. Do not retry in a loop.`
}
