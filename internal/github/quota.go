package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
)

const integrationDeniedMessage = "Resource not accessible by integration"

// copilotUserResponse mirrors the shape of the Copilot usage payload.
// The numeric fields are pointers so absence can be told apart from
// zero.
type copilotUserResponse struct {
	CopilotPlan    *string `json:"copilot_plan"`
	QuotaResetDate *string `json:"quota_reset_date"`
	QuotaSnapshots map[string]struct {
		Entitlement *float64 `json:"entitlement"`
		Remaining   *float64 `json:"remaining"`
	} `json:"quota_snapshots"`
}

// FetchQuota retrieves the Copilot usage snapshot for a token and
// normalizes it. includedOverride, when present, replaces the reported
// entitlement as the included-requests figure. The raw payload is
// retained verbatim for diagnostics.
func (c *Client) FetchQuota(token string, includedOverride *int64) (*models.Quota, error) {
	body, err := c.getJSON(c.apiBaseURL+"/copilot_internal/user", token, true)
	if err != nil {
		return nil, err
	}

	var payload copilotUserResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse quota response: %w", err)
	}

	premium, ok := payload.QuotaSnapshots["premium_interactions"]
	if !ok {
		return nil, &MalformedResponseError{Field: "quota_snapshots.premium_interactions"}
	}
	if premium.Entitlement == nil {
		return nil, &MalformedResponseError{Field: "quota_snapshots.premium_interactions.entitlement"}
	}
	if premium.Remaining == nil {
		return nil, &MalformedResponseError{Field: "quota_snapshots.premium_interactions.remaining"}
	}

	entitlement := int64(*premium.Entitlement)
	remaining := int64(*premium.Remaining)

	included := entitlement
	if includedOverride != nil {
		included = *includedOverride
	}

	used := entitlement - remaining
	if used < 0 {
		used = 0
	}
	if remaining < 0 {
		remaining = 0
	}

	quota := &models.Quota{
		UsedRequests:      used,
		IncludedRequests:  &included,
		RemainingRequests: &remaining,
		UsageItemsCount:   len(payload.QuotaSnapshots),
		CopilotPlan:       payload.CopilotPlan,
		QuotaResetDate:    payload.QuotaResetDate,
		RawData:           json.RawMessage(body),
	}
	return quota, nil
}

// getJSON sends an authenticated GET and returns the body of a
// successful response. versioned adds the usage endpoint's API-version
// header.
func (c *Client) getJSON(endpoint, token string, versioned bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if versioned {
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	}

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

	if resp.StatusCode == http.StatusForbidden && strings.Contains(string(body), integrationDeniedMessage) {
		return nil, ErrPermissionIntegration
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
