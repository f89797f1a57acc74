package github

import (
	"errors"
	"fmt"
)

// ErrClientIDMissing is returned when the OAuth client id resolves to an
// empty string after trimming and falling back to the built-in default.
var ErrClientIDMissing = errors.New("oauth client id is empty")

// ErrPermissionIntegration is the distinguished 403 case where the token
// belongs to an integration that cannot reach the Copilot usage endpoint.
// Callers render different guidance for it than for a generic provider
// failure.
var ErrPermissionIntegration = errors.New("token not permitted to access Copilot usage (resource not accessible by integration)")

// ProviderError reports a non-success HTTP status from GitHub, carrying
// the raw body for diagnostics.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("github request failed (status %d): %s", e.Status, e.Body)
}

// MalformedResponseError reports a usage payload missing a required
// field. A silently-wrong quota is worse than an explicit error, so this
// is a hard failure rather than a zero-fill.
type MalformedResponseError struct {
	Field string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed quota response: missing %s", e.Field)
}
