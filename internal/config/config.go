// Package config handles environment-based configuration for lineargate.
//
// All settings come from environment variables so the server can be
// launched from any MCP host config without a config file. Load returns
// a Config whose Validate method enforces the startup invariants: a
// missing required secret is a fatal configuration error that must be
// reported before any network call is attempted.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Default endpoints for the Linear API. Overridable for tests and
// self-hosted proxies.
const (
	DefaultAPIURL       = "https://api.linear.app/graphql"
	DefaultTokenURL     = "https://api.linear.app/oauth/token"
	DefaultAuthorizeURL = "https://linear.app/oauth/authorize"

	// DefaultCallbackAddr is where the `auth` command listens for the
	// OAuth redirect.
	DefaultCallbackAddr = "127.0.0.1:8910"

	// DefaultScope is the permission set requested during authorization.
	DefaultScope = "read,write,issues:create,comments:create"
)

// Config holds every setting the server reads at startup.
type Config struct {
	// OAuth application credentials for the Linear OAuth app.
	ClientID     string
	ClientSecret string

	// EncryptionSecret protects credentials at rest. The AES key is
	// derived from it by SHA-256, so any non-empty string works.
	EncryptionSecret string

	// APIKey enables non-interactive static-key mode. Optional.
	APIKey string

	// Endpoint overrides.
	APIURL       string
	TokenURL     string
	AuthorizeURL string
	CallbackAddr string
	Scope        string

	// DBPath is the SQLite file holding encrypted credentials.
	DBPath string

	// LogLevel is one of debug, info, warn, error (default "info").
	LogLevel string
}

// Load reads configuration from the environment and applies defaults.
// It does not validate; call Validate before using the result so the
// caller controls how configuration errors are reported.
func Load() *Config {
	cfg := &Config{
		ClientID:         os.Getenv("LINEAR_CLIENT_ID"),
		ClientSecret:     os.Getenv("LINEAR_CLIENT_SECRET"),
		EncryptionSecret: os.Getenv("LINEARGATE_ENCRYPTION_KEY"),
		APIKey:           os.Getenv("LINEAR_API_KEY"),
		APIURL:           os.Getenv("LINEAR_API_URL"),
		TokenURL:         os.Getenv("LINEAR_TOKEN_URL"),
		AuthorizeURL:     os.Getenv("LINEAR_AUTHORIZE_URL"),
		CallbackAddr:     os.Getenv("LINEARGATE_CALLBACK_ADDR"),
		Scope:            os.Getenv("LINEAR_OAUTH_SCOPE"),
		DBPath:           os.Getenv("LINEARGATE_DB_PATH"),
		LogLevel:         os.Getenv("LINEARGATE_LOG_LEVEL"),
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.CallbackAddr == "" {
		cfg.CallbackAddr = DefaultCallbackAddr
	}
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg
}

// Validate checks the invariants needed before any network traffic.
// Static-key mode only needs the API key and the encryption secret;
// OAuth mode additionally needs the client credentials.
func (c *Config) Validate() error {
	if c.EncryptionSecret == "" {
		return fmt.Errorf("LINEARGATE_ENCRYPTION_KEY is required to protect stored credentials")
	}
	if c.APIKey != "" {
		return nil
	}
	if c.ClientID == "" {
		return fmt.Errorf("LINEAR_CLIENT_ID is required (or set LINEAR_API_KEY for static-key mode)")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("LINEAR_CLIENT_SECRET is required (or set LINEAR_API_KEY for static-key mode)")
	}
	return nil
}

// StaticKeyMode reports whether the server authenticates with a static
// API key instead of per-user OAuth tokens.
func (c *Config) StaticKeyMode() bool {
	return c.APIKey != ""
}

// RedirectURI is the OAuth redirect target served by the auth command.
func (c *Config) RedirectURI() string {
	return "http://" + c.CallbackAddr + "/callback"
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger. It writes to stderr because
// stdout carries the MCP stdio transport.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: c.SlogLevel(),
	}))
}

// defaultDBPath places the credential database under the user config
// directory, falling back to the working directory when unavailable.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lineargate.db"
	}
	return dir + string(os.PathSeparator) + "lineargate" + string(os.PathSeparator) + "credentials.db"
}

// HTTPTimeout is the default timeout for outbound HTTP calls. The MCP
// host enforces its own per-tool deadline on top of this.
const HTTPTimeout = 30 * time.Second
