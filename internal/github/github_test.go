package github

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		oauthBaseURL: server.URL,
		apiBaseURL:   server.URL,
	}
}

func TestResolveClientID(t *testing.T) {
	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"default", "", DefaultClientID},
		{"whitespace only", "   ", DefaultClientID},
		{"override wins", "Iv1.custom", "Iv1.custom"},
		{"override trimmed", "  Iv1.custom  ", "Iv1.custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveClientID(tt.override)
			if err != nil {
				t.Fatalf("ResolveClientID() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveClientID(%q) = %q, want %q", tt.override, got, tt.want)
			}
		})
	}
}

func TestRequestDeviceCode(t *testing.T) {
	var gotClientID, gotScope string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/device/code" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotClientID = r.PostFormValue("client_id")
		gotScope = r.PostFormValue("scope")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"device_code": "dc-123",
			"user_code": "ABCD-1234",
			"verification_uri": "https://github.com/login/device",
			"expires_in": 899,
			"interval": 5
		}`))
	}))

	code, err := client.RequestDeviceCode("")
	if err != nil {
		t.Fatalf("RequestDeviceCode() failed: %v", err)
	}

	if gotClientID != DefaultClientID {
		t.Errorf("client_id = %q, want default", gotClientID)
	}
	if gotScope != "read:user" {
		t.Errorf("scope = %q, want read:user", gotScope)
	}
	if code.UserCode != "ABCD-1234" || code.DeviceCode != "dc-123" {
		t.Errorf("unexpected codes: %+v", code)
	}
	if code.ExpiresIn != 899 || code.Interval != 5 {
		t.Errorf("unexpected timing fields: %+v", code)
	}
}

func TestRequestDeviceCode_ProviderError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))

	_, err := client.RequestDeviceCode("")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", provErr.Status)
	}
}

func TestPollDeviceToken_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus PollStatus
	}{
		{"granted", `{"access_token": "gho_abc", "token_type": "bearer"}`, StatusGranted},
		{"authorization pending", `{"error": "authorization_pending"}`, StatusPending},
		{"slow down", `{"error": "slow_down", "interval": 10}`, StatusSlowDown},
		{"expired", `{"error": "expired_token"}`, StatusExpired},
		{"denied", `{"error": "access_denied"}`, StatusDenied},
		{"unrecognized code", `{"error": "incorrect_device_code"}`, StatusUnknown},
		{"neither token nor error", `{}`, StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/login/oauth/access_token" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))

			result, err := client.PollDeviceToken("", "dc-123")
			if err != nil {
				t.Fatalf("PollDeviceToken() failed: %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", result.Status, tt.wantStatus)
			}
			if tt.wantStatus == StatusGranted && result.AccessToken != "gho_abc" {
				t.Errorf("access token = %q, want gho_abc", result.AccessToken)
			}
			if tt.wantStatus == StatusUnknown && result.ErrorCode != "incorrect_device_code" {
				t.Errorf("error code = %q, want provider code", result.ErrorCode)
			}
		})
	}
}

func TestFetchQuota_Derivation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/copilot_internal/user" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != "2022-11-28" {
			t.Errorf("X-GitHub-Api-Version = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"copilot_plan": "individual",
			"quota_reset_date": "2026-09-01",
			"quota_snapshots": {
				"premium_interactions": {"entitlement": 300, "remaining": 120}
			}
		}`))
	}))

	quota, err := client.FetchQuota("tok", nil)
	if err != nil {
		t.Fatalf("FetchQuota() failed: %v", err)
	}

	if quota.UsedRequests != 180 {
		t.Errorf("used = %d, want 180", quota.UsedRequests)
	}
	if quota.RemainingRequests == nil || *quota.RemainingRequests != 120 {
		t.Errorf("remaining = %v, want 120", quota.RemainingRequests)
	}
	if quota.IncludedRequests == nil || *quota.IncludedRequests != 300 {
		t.Errorf("included = %v, want entitlement 300", quota.IncludedRequests)
	}
	if quota.CopilotPlan == nil || *quota.CopilotPlan != "individual" {
		t.Errorf("plan = %v, want individual", quota.CopilotPlan)
	}
	if quota.QuotaResetDate == nil || *quota.QuotaResetDate != "2026-09-01" {
		t.Errorf("reset date = %v", quota.QuotaResetDate)
	}
	if quota.UsageItemsCount != 1 {
		t.Errorf("usage items = %d, want 1 snapshot", quota.UsageItemsCount)
	}
	if len(quota.RawData) == 0 {
		t.Error("raw payload should be retained")
	}
}

func TestFetchQuota_NegativeRemainingClamped(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quota_snapshots": {"premium_interactions": {"entitlement": 300, "remaining": -5}}}`))
	}))

	quota, err := client.FetchQuota("tok", nil)
	if err != nil {
		t.Fatalf("FetchQuota() failed: %v", err)
	}
	if quota.RemainingRequests == nil || *quota.RemainingRequests != 0 {
		t.Errorf("remaining = %v, want clamped to 0", quota.RemainingRequests)
	}
}

func TestFetchQuota_IncludedOverride(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quota_snapshots": {"premium_interactions": {"entitlement": 300, "remaining": 120}}}`))
	}))

	override := int64(1500)
	quota, err := client.FetchQuota("tok", &override)
	if err != nil {
		t.Fatalf("FetchQuota() failed: %v", err)
	}
	if quota.IncludedRequests == nil || *quota.IncludedRequests != 1500 {
		t.Errorf("included = %v, want override 1500", quota.IncludedRequests)
	}
	if quota.UsedRequests != 180 {
		t.Errorf("used = %d, override must not affect derivation", quota.UsedRequests)
	}
}

func TestFetchQuota_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no snapshots", `{"copilot_plan": "individual"}`},
		{"no premium interactions", `{"quota_snapshots": {}}`},
		{"no entitlement", `{"quota_snapshots": {"premium_interactions": {"remaining": 120}}}`},
		{"no remaining", `{"quota_snapshots": {"premium_interactions": {"entitlement": 300}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := client.FetchQuota("tok", nil)
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Errorf("error = %v, want *MalformedResponseError", err)
			}
		})
	}
}

func TestFetchQuota_PermissionIntegration(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Resource not accessible by integration"}`))
	}))

	_, err := client.FetchQuota("tok", nil)
	if !errors.Is(err, ErrPermissionIntegration) {
		t.Errorf("error = %v, want ErrPermissionIntegration", err)
	}
}

func TestFetchQuota_ProviderError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
	}))

	_, err := client.FetchQuota("tok", nil)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", provErr.Status)
	}
}

func TestFetchUser(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != "cockpit-tools" {
			t.Errorf("User-Agent = %q", got)
		}
		_, _ = w.Write([]byte(`{"login": "octocat", "email": "octo@example.com"}`))
	}))

	user, err := client.FetchUser("tok")
	if err != nil {
		t.Fatalf("FetchUser() failed: %v", err)
	}
	if user.Login != "octocat" {
		t.Errorf("login = %q, want octocat", user.Login)
	}
	if user.Email == nil || *user.Email != "octo@example.com" {
		t.Errorf("email = %v", user.Email)
	}
}

func TestFetchUser_MissingLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email": null}`))
	}))

	_, err := client.FetchUser("tok")
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Errorf("error = %v, want *MalformedResponseError", err)
	}
}
