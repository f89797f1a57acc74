package sync

import (
	"errors"
	"sync"
	"testing"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/github"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/store"
)

// fakeProvider maps tokens to canned responses.
type fakeProvider struct {
	mu     sync.Mutex
	users  map[string]*github.User
	quotas map[string]*models.Quota
	errs   map[string]error
	calls  int
}

func (f *fakeProvider) FetchUser(token string) (*github.User, error) {
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, &github.ProviderError{Status: 401, Body: "Bad credentials"}
	}
	return user, nil
}

func (f *fakeProvider) FetchQuota(token string, includedOverride *int64) (*models.Quota, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	quota, ok := f.quotas[token]
	if !ok {
		return nil, &github.ProviderError{Status: 401, Body: "Bad credentials"}
	}
	clone := quota.Clone()
	if includedOverride != nil {
		clone.IncludedRequests = includedOverride
	}
	return &clone, nil
}

func newTestService(t *testing.T, provider *fakeProvider) (*Service, *store.Store) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Logf("store.Close() failed: %v", err)
		}
	})

	return New(st, provider, 2), st
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func sampleQuota(used, included int64) *models.Quota {
	remaining := included - used
	return &models.Quota{
		UsedRequests:      used,
		IncludedRequests:  &included,
		RemainingRequests: &remaining,
	}
}

func TestAddAccount(t *testing.T) {
	provider := &fakeProvider{
		users:  map[string]*github.User{"tok": {Login: "octocat", Email: strPtr("octo@example.com")}},
		quotas: map[string]*models.Quota{"tok": sampleQuota(40, 300)},
	}
	service, st := newTestService(t, provider)

	account, err := service.AddAccount("tok", strPtr("individual"), nil)
	if err != nil {
		t.Fatalf("AddAccount() failed: %v", err)
	}

	if account.Username != "octocat" {
		t.Errorf("username = %q, want octocat", account.Username)
	}
	if account.Quota == nil || account.Quota.UsedRequests != 40 {
		t.Errorf("quota should be populated opportunistically, got %+v", account.Quota)
	}

	stored, err := st.GetAccount(account.ID)
	if err != nil {
		t.Fatalf("GetAccount() failed: %v", err)
	}
	if stored.Quota == nil {
		t.Error("quota was not persisted")
	}
}

func TestAddAccount_QuotaFailureIsNotFatal(t *testing.T) {
	provider := &fakeProvider{
		users: map[string]*github.User{"tok": {Login: "octocat"}},
		// No quota entry: the fetch fails with a provider error.
		quotas: map[string]*models.Quota{},
	}
	service, st := newTestService(t, provider)

	account, err := service.AddAccount("tok", nil, nil)
	if err != nil {
		t.Fatalf("AddAccount() should succeed despite quota failure: %v", err)
	}
	if account.Quota != nil {
		t.Error("quota should be absent after a failed fetch")
	}
	if len(st.List()) != 1 {
		t.Error("account should be stored either way")
	}
}

func TestAddAccount_UserFetchFails(t *testing.T) {
	provider := &fakeProvider{users: map[string]*github.User{}}
	service, st := newTestService(t, provider)

	_, err := service.AddAccount("bad-tok", nil, nil)
	var provErr *github.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if len(st.List()) != 0 {
		t.Error("no account should be stored when identity resolution fails")
	}
}

func TestRefreshAccount(t *testing.T) {
	provider := &fakeProvider{
		users:  map[string]*github.User{"tok": {Login: "octocat"}},
		quotas: map[string]*models.Quota{"tok": sampleQuota(40, 300)},
	}
	service, st := newTestService(t, provider)

	account, err := st.Upsert("octocat", "tok", nil, nil, int64Ptr(1500))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	quota, err := service.RefreshAccount(account.ID)
	if err != nil {
		t.Fatalf("RefreshAccount() failed: %v", err)
	}
	if quota.IncludedRequests == nil || *quota.IncludedRequests != 1500 {
		t.Errorf("included = %v, stored override should be forwarded", quota.IncludedRequests)
	}

	stored, err := st.GetAccount(account.ID)
	if err != nil {
		t.Fatalf("GetAccount() failed: %v", err)
	}
	if stored.Quota == nil || stored.Quota.UsedRequests != 40 {
		t.Errorf("persisted quota = %+v", stored.Quota)
	}
	if stored.Token != "tok" {
		t.Error("refresh must not mutate the token")
	}
}

func TestRefreshAccount_NotFound(t *testing.T) {
	service, _ := newTestService(t, &fakeProvider{})

	_, err := service.RefreshAccount("copilot_missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}

func TestRefreshAll_BatchIsolation(t *testing.T) {
	provider := &fakeProvider{
		quotas: map[string]*models.Quota{
			"tok-a": sampleQuota(10, 300),
			"tok-c": sampleQuota(20, 300),
		},
		errs: map[string]error{
			"tok-b": &github.ProviderError{Status: 401, Body: "Bad credentials"},
		},
	}
	service, st := newTestService(t, provider)

	for _, acc := range []struct{ username, token string }{
		{"alice", "tok-a"},
		{"bob", "tok-b"},
		{"carol", "tok-c"},
	} {
		if _, err := st.Upsert(acc.username, acc.token, nil, nil, nil); err != nil {
			t.Fatalf("Upsert(%q) failed: %v", acc.username, err)
		}
	}

	results := service.RefreshAll()
	if len(results) != 3 {
		t.Fatalf("RefreshAll() returned %d results, want 3", len(results))
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if r.Username != "bob" {
				t.Errorf("unexpected failure for %q: %v", r.Username, r.Err)
			}
			continue
		}
		if r.Quota == nil {
			t.Errorf("succeeded result for %q has no quota", r.Username)
		}
	}
	if failed != 1 {
		t.Errorf("failed count = %d, want exactly 1", failed)
	}
	if got := SuccessCount(results); got != 2 {
		t.Errorf("SuccessCount() = %d, want 2", got)
	}
}

func TestRefreshAll_Empty(t *testing.T) {
	service, _ := newTestService(t, &fakeProvider{})

	if results := service.RefreshAll(); len(results) != 0 {
		t.Errorf("RefreshAll() on empty store returned %d results", len(results))
	}
}
