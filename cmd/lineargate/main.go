// Lineargate: a Linear MCP gateway.
//
// Exposes Linear's GraphQL API as MCP tools with per-user OAuth,
// proactive token refresh, and encrypted credential storage.
//
// Usage:
//
//	lineargate serve    # Start MCP server (stdio transport)
//	lineargate auth     # Authenticate with Linear via OAuth
//	lineargate update   # Update to the latest version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lineargate/lineargate/internal/config"
	"github.com/lineargate/lineargate/internal/credstore"
	"github.com/lineargate/lineargate/internal/graphql"
	"github.com/lineargate/lineargate/internal/linear"
	"github.com/lineargate/lineargate/internal/oauth"
	"github.com/lineargate/lineargate/internal/server"
	"github.com/lineargate/lineargate/internal/token"
	"github.com/lineargate/lineargate/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "auth":
		if err := runAuth(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("lineargate v%s\n", server.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.NewLogger()

	s, cleanup, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check. Prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return mcpserver.ServeStdio(s)
}

// runAuth walks the interactive authorization-code flow: print the
// authorize URL, wait for the localhost redirect, exchange the code,
// confirm the identity against the API, and persist the credential set.
func runAuth() error {
	cfg := config.Load()
	cfg.APIKey = "" // auth always targets the OAuth identity
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.NewLogger()

	store, err := credstore.Open(cfg.DBPath, cfg.EncryptionSecret, logger)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	defer func() { _ = store.Close() }()

	flow := oauth.NewFlow(cfg.ClientID, cfg.ClientSecret,
		cfg.AuthorizeURL, cfg.TokenURL, cfg.RedirectURI(), cfg.Scope)
	flow.Logger = logger

	authorizeURL, err := flow.BuildAuthorizeURL()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Open this URL in your browser to authorize lineargate:\n\n  %s\n\n", authorizeURL)
	fmt.Fprintf(os.Stderr, "Waiting for the redirect on %s ...\n", cfg.CallbackAddr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	code, err := flow.WaitForCallback(ctx, cfg.CallbackAddr)
	if err != nil {
		return err
	}

	set, err := flow.Exchange(ctx, code)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, server.OAuthIdentity, set); err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}

	// Confirm the credential works and greet the user by name.
	manager := token.NewManager(server.OAuthIdentity, store, token.Endpoint{
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, true, token.WithLogger(logger))
	client := linear.NewClient(graphql.NewClient(cfg.APIURL), manager, linear.WithLogger(logger))

	viewer, err := client.Viewer(ctx)
	if err != nil {
		return fmt.Errorf("verifying credential: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Authenticated as %s <%s>.\n", viewer.Name, viewer.Email)
	return nil
}

// checkForUpdates runs a best-effort version check and prints a notice
// to stderr when an update exists. Network failures stay silent.
func checkForUpdates() {
	if release, ok := updater.Check(server.Version); ok {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: lineargate update\n"+
				"  Release: %s\n\n",
			server.Version, release.Version(), release.HTMLURL,
		)
	}
}

// runUpdate performs a self-update to the latest release.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "Checking for updates...\n")

	release, ok := updater.Check(server.Version)
	if !ok {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", server.Version)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s -> v%s\nDownloading...\n",
		server.Version, release.Version())

	if err := updater.SelfUpdate(server.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n  You can download manually from:\n  %s\n", release.HTMLURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart lineargate to use the new version.\n", release.Version())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Lineargate v%s — Linear MCP gateway

Usage:
  lineargate serve    Start the MCP server (stdio transport)
  lineargate auth     Authenticate with Linear via OAuth
  lineargate update   Update to the latest version

Environment:
  LINEAR_CLIENT_ID          OAuth app client id (required unless LINEAR_API_KEY is set)
  LINEAR_CLIENT_SECRET      OAuth app client secret
  LINEAR_API_KEY            Static API key for non-interactive access
  LINEARGATE_ENCRYPTION_KEY Secret protecting stored credentials (required)
  LINEARGATE_DB_PATH        Credential database location (default: user config dir)
  LINEARGATE_LOG_LEVEL      debug | info | warn | error (default info)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "lineargate": {
        "command": "lineargate",
        "args": ["serve"],
        "env": { "LINEARGATE_ENCRYPTION_KEY": "..." }
      }
    }
  }
`, server.Version)
}
