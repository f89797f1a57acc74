package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
)

// DeviceCode is the provider's response to a device authorization
// request. The caller shows UserCode and VerificationURI to the human,
// then polls with DeviceCode honoring Interval and ExpiresIn.
type DeviceCode struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// PollStatus is the closed set of outcomes of a single token poll.
type PollStatus int

const (
	// StatusGranted means an access token was issued.
	StatusGranted PollStatus = iota
	// StatusPending means the user has not yet authorized the code.
	StatusPending
	// StatusSlowDown means the provider asked for a longer poll interval.
	StatusSlowDown
	// StatusExpired means the device code has expired; restart the flow.
	StatusExpired
	// StatusDenied means the user refused the authorization.
	StatusDenied
	// StatusUnknown means the provider returned an unrecognized error code.
	StatusUnknown
)

// String returns the caller-facing name of the status.
func (s PollStatus) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusPending:
		return "pending"
	case StatusSlowDown:
		return "slow_down"
	case StatusExpired:
		return "expired"
	case StatusDenied:
		return "denied"
	default:
		return "error"
	}
}

// PollResult is the discriminated outcome of one poll. AccessToken is set
// only when Status is StatusGranted; ErrorCode carries the provider's
// raw error string when Status is StatusUnknown.
type PollResult struct {
	Status      PollStatus
	AccessToken string
	ErrorCode   string
}

// RequestDeviceCode starts the device grant by requesting a user code.
func (c *Client) RequestDeviceCode(clientID string) (*DeviceCode, error) {
	resolved, err := ResolveClientID(clientID)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("client_id", resolved)
	data.Set("scope", deviceScope)

	body, err := c.postForm(c.oauthBaseURL+"/login/device/code", data)
	if err != nil {
		return nil, err
	}

	var code DeviceCode
	if err := json.Unmarshal(body, &code); err != nil {
		return nil, fmt.Errorf("failed to parse device code response: %w", err)
	}
	return &code, nil
}

// PollDeviceToken performs exactly one poll of the token endpoint. The
// caller owns the poll loop, honoring the interval (plus backoff on
// StatusSlowDown) and the expires_in deadline.
func (c *Client) PollDeviceToken(clientID, deviceCode string) (*PollResult, error) {
	resolved, err := ResolveClientID(clientID)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("client_id", resolved)
	data.Set("device_code", deviceCode)
	data.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")

	body, err := c.postForm(c.oauthBaseURL+"/login/oauth/access_token", data)
	if err != nil {
		return nil, err
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if tokenResp.AccessToken != "" {
		return &PollResult{Status: StatusGranted, AccessToken: tokenResp.AccessToken}, nil
	}

	switch tokenResp.Error {
	case "":
		// Some providers omit the error field on transient states.
		return &PollResult{Status: StatusPending}, nil
	case "authorization_pending":
		return &PollResult{Status: StatusPending}, nil
	case "slow_down":
		return &PollResult{Status: StatusSlowDown}, nil
	case "expired_token":
		return &PollResult{Status: StatusExpired}, nil
	case "access_denied":
		return &PollResult{Status: StatusDenied}, nil
	default:
		return &PollResult{Status: StatusUnknown, ErrorCode: tokenResp.Error}, nil
	}
}

// postForm sends a form-encoded POST to an OAuth endpoint and returns the
// body of a successful response.
func (c *Client) postForm(endpoint string, data url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), "POST", endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
