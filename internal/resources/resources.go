// Package resources implements MCP resource handlers for the gateway.
//
// Resources provide read-only data the host can consume for context.
// They use URI-based addressing (lineargate://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lineargate/lineargate/internal/config"
)

// Handler manages the gateway's resource endpoints.
type Handler struct {
	cfg     *config.Config
	version string
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(cfg *config.Config, version string) *Handler {
	return &Handler{cfg: cfg, version: version}
}

// StatusResource returns the MCP resource definition for gateway status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"lineargate://status",
		"Lineargate Status",
		mcp.WithResourceDescription("Gateway version, authentication mode, and API endpoint"),
		mcp.WithMIMEType("application/json"),
	)
}

// status is the resource payload. Secrets never appear here.
type status struct {
	Version  string `json:"version"`
	AuthMode string `json:"authMode"`
	APIURL   string `json:"apiUrl"`
	DBPath   string `json:"dbPath"`
}

// HandleStatus returns the current gateway status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	mode := "oauth"
	if h.cfg.StaticKeyMode() {
		mode = "apikey"
	}

	data, err := json.MarshalIndent(status{
		Version:  h.version,
		AuthMode: mode,
		APIURL:   h.cfg.APIURL,
		DBPath:   h.cfg.DBPath,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
