// Package sync fetches Copilot usage from GitHub and writes the
// normalized snapshots back into the account store.
package sync

import (
	"sync"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/github"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/store"
)

// Provider is the slice of the GitHub client this service depends on.
type Provider interface {
	FetchUser(token string) (*github.User, error)
	FetchQuota(token string, includedOverride *int64) (*models.Quota, error)
}

const defaultMaxConcurrent = 5

// Service coordinates quota refreshes between the provider and the
// store.
type Service struct {
	store         *store.Store
	provider      Provider
	maxConcurrent int
}

// New creates a synchronizer. maxConcurrent bounds the fan-out of
// RefreshAll; zero selects the default.
func New(st *store.Store, provider Provider, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Service{
		store:         st,
		provider:      provider,
		maxConcurrent: maxConcurrent,
	}
}

// AddAccount resolves the identity behind a freshly granted token,
// upserts the account, and opportunistically populates its quota. A
// failed quota fetch is logged, not fatal; the account is stored either
// way.
func (s *Service) AddAccount(token string, plan *string, includedOverride *int64) (models.Account, error) {
	user, err := s.provider.FetchUser(token)
	if err != nil {
		return models.Account{}, err
	}

	account, err := s.store.Upsert(user.Login, token, user.Email, plan, includedOverride)
	if err != nil {
		return models.Account{}, err
	}

	if _, err := s.RefreshAccount(account.ID); err != nil {
		logger.Warn("initial quota fetch failed", "username", account.Username, "error", err)
	} else if refreshed, loadErr := s.store.GetAccount(account.ID); loadErr == nil {
		account = refreshed
	}

	return account, nil
}

// RefreshAccount fetches a fresh quota for one account and persists it.
// The account's token is never mutated.
func (s *Service) RefreshAccount(id string) (*models.Quota, error) {
	account, err := s.store.GetAccount(id)
	if err != nil {
		return nil, err
	}

	quota, err := s.provider.FetchQuota(account.Token, account.MonthlyIncludedRequests)
	if err != nil {
		return nil, err
	}

	account.Quota = quota
	if err := s.store.SaveAccount(account); err != nil {
		return nil, err
	}
	return quota, nil
}

// Result is the per-account outcome of a batch refresh.
type Result struct {
	ID       string
	Username string
	Quota    *models.Quota
	Err      error
}

// RefreshAll refreshes every stored account, fanning out under a bounded
// semaphore. One account's provider failure never aborts the batch; the
// caller decides how to summarize the per-account results.
func (s *Service) RefreshAll() []Result {
	accounts := s.store.List()
	results := make([]Result, len(accounts))

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, account := range accounts {
		wg.Add(1)
		go func(i int, id, username string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			quota, err := s.RefreshAccount(id)
			if err != nil {
				logger.Error("failed to refresh quota", "username", username, "error", err)
			}
			results[i] = Result{ID: id, Username: username, Quota: quota, Err: err}
		}(i, account.ID, account.Username)
	}

	wg.Wait()
	return results
}

// SuccessCount counts the succeeded entries of a batch result.
func SuccessCount(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Err == nil {
			count++
		}
	}
	return count
}
