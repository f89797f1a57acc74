// Package models defines data structures and domain types.
package models

import "time"

// Account represents one authenticated GitHub Copilot identity.
// The JSON shape matches the on-disk detail record format.
type Account struct {
	ID                      string   `json:"id"`
	Username                string   `json:"username"`
	Email                   *string  `json:"email"`
	Plan                    *string  `json:"plan"`
	MonthlyIncludedRequests *int64   `json:"monthly_included_requests"`
	Token                   string   `json:"token"`
	Quota                   *Quota   `json:"quota"`
	Tags                    []string `json:"tags"`
	CreatedAt               int64    `json:"created_at"`
	LastUsed                int64    `json:"last_used"`
}

// NewAccount creates an account with fresh timestamps.
func NewAccount(id, username, token string, email, plan *string, includedRequests *int64) Account {
	now := time.Now().Unix()
	return Account{
		ID:                      id,
		Username:                username,
		Email:                   email,
		Plan:                    plan,
		MonthlyIncludedRequests: includedRequests,
		Token:                   token,
		CreatedAt:               now,
		LastUsed:                now,
	}
}

// TouchLastUsed bumps the last-used timestamp to now.
func (a *Account) TouchLastUsed() {
	a.LastUsed = time.Now().Unix()
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() Account {
	clone := *a
	if a.Tags != nil {
		clone.Tags = make([]string, len(a.Tags))
		copy(clone.Tags, a.Tags)
	}
	if a.Quota != nil {
		q := a.Quota.Clone()
		clone.Quota = &q
	}
	return clone
}

// AccountIndex is the directory of all accounts: lightweight summaries
// plus the current-account pointer.
type AccountIndex struct {
	Version          string           `json:"version"`
	Accounts         []AccountSummary `json:"accounts"`
	CurrentAccountID *string          `json:"current_account_id"`
}

// AccountSummary is the index-only projection of an account.
type AccountSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
	LastUsed  int64  `json:"last_used"`
}

// NewAccountIndex returns an empty index at the current format version.
func NewAccountIndex() AccountIndex {
	return AccountIndex{
		Version:  "1.0",
		Accounts: make([]AccountSummary, 0),
	}
}
