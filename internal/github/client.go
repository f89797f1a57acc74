// Package github is the API client for the two GitHub surfaces this tool
// touches: the OAuth Device Authorization Grant endpoints and the Copilot
// usage endpoint.
package github

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultClientID is the built-in OAuth application registration,
	// used unless a deployment supplies its own.
	DefaultClientID = "Iv1.b507a08c87ecfe98"

	deviceScope = "read:user"
	userAgent   = "cockpit-tools"

	defaultOAuthBaseURL = "https://github.com"
	defaultAPIBaseURL   = "https://api.github.com"
)

// Client issues requests against GitHub. The base URLs are fields so
// tests can point the client at a local server.
type Client struct {
	httpClient   *http.Client
	oauthBaseURL string
	apiBaseURL   string
}

// NewClient creates a client against the real GitHub endpoints.
func NewClient() *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		oauthBaseURL: defaultOAuthBaseURL,
		apiBaseURL:   defaultAPIBaseURL,
	}
}

// ResolveClientID applies the override rule: an explicit override wins if
// non-empty after trimming, otherwise the built-in default is used.
func ResolveClientID(override string) (string, error) {
	id := strings.TrimSpace(override)
	if id == "" {
		id = strings.TrimSpace(DefaultClientID)
	}
	if id == "" {
		return "", ErrClientIDMissing
	}
	return id, nil
}
