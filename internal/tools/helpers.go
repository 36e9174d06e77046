// Package tools implements the MCP tool handlers for the Linear gateway.
//
// Each tool is a struct holding its dependencies (DIP) with a
// Definition() for registration and a Handle compatible with mcp-go's
// CallToolRequest signature. Handlers never panic outward: every
// failure becomes a structured error payload so one malformed call
// cannot take the server down.
package tools

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult serializes v as indented JSON text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult converts any domain error into an error payload. The
// domain error types already carry user-actionable messages (NotFound
// names the missing resource, reauth errors name the command to run).
func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// splitList parses a comma-separated parameter into trimmed values.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// optString returns a pointer to the argument's string value when the
// caller supplied it, nil when absent. Update tools need the
// distinction between "not provided" and "set to empty".
func optString(req mcp.CallToolRequest, name string) *string {
	args := req.GetArguments()
	if _, ok := args[name]; !ok {
		return nil
	}
	v := req.GetString(name, "")
	return &v
}
