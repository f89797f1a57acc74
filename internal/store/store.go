// Package store provides durable, file-backed persistence of Copilot
// accounts and the current-account pointer.
//
// The layout is one JSON detail record per account under
// <root>/copilot_accounts/<id>.json plus a single index document at
// <root>/copilot_accounts.json. The index write is the commit point for
// visibility: an account only appears in List once its summary is in the
// index. No cross-process locking is performed; the store assumes a
// single interactive process.
package store

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
)

const (
	indexFileName   = "copilot_accounts.json"
	accountsDirName = "copilot_accounts"
)

// Store is a handle on one storage root. All operations are short-lived
// read/write calls against that root.
type Store struct {
	mu       sync.Mutex
	root     string
	degraded bool

	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// AccountID derives the stable account id from a username. The mapping is
// case-insensitive so re-authenticating the same login under a different
// casing resolves to the same record.
func AccountID(username string) string {
	sum := md5.Sum([]byte(strings.ToLower(username)))
	return fmt.Sprintf("copilot_%x", sum)
}

// New creates a store rooted at the given directory, creating it and the
// accounts subdirectory on demand.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root must not be empty")
	}

	if err := os.MkdirAll(filepath.Join(root, accountsDirName), 0o750); err != nil {
		return nil, &PersistenceError{Op: "create storage root", Err: err}
	}

	s := &Store{
		root:      root,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if err := s.startWatcher(); err != nil {
		return nil, err
	}

	return s, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Degraded reports whether any detail record had to be skipped because it
// was missing or unreadable. The condition is logged once per session.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) markDegraded(id string, reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		logger.Warn("skipping unreadable account record", "id", id, "error", reason)
		s.degraded = true
	}
}

func (s *Store) indexPath() string {
	return filepath.Join(s.root, indexFileName)
}

func (s *Store) accountPath(id string) string {
	return filepath.Join(s.root, accountsDirName, id+".json")
}

// loadIndex reads the index document. A missing or corrupt index is
// treated as empty; it self-heals on the next write.
func (s *Store) loadIndex() models.AccountIndex {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		return models.NewAccountIndex()
	}

	var index models.AccountIndex
	if err := json.Unmarshal(data, &index); err != nil {
		logger.Warn("account index unreadable, treating as empty", "error", err)
		return models.NewAccountIndex()
	}
	if index.Accounts == nil {
		index.Accounts = make([]models.AccountSummary, 0)
	}
	return index
}

func (s *Store) saveIndex(index models.AccountIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "marshal index", Err: err}
	}
	if err := s.writeFileAtomic(s.indexPath(), data); err != nil {
		return &PersistenceError{Op: "write index", Err: err}
	}
	return nil
}

// loadAccount reads one detail record. Missing or corrupt records are
// reported as absent, never as errors.
func (s *Store) loadAccount(id string) (models.Account, bool) {
	data, err := os.ReadFile(s.accountPath(id))
	if err != nil {
		return models.Account{}, false
	}

	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return models.Account{}, false
	}
	return account, true
}

func (s *Store) saveAccount(account models.Account) error {
	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "marshal account", Err: err}
	}
	if err := s.writeFileAtomic(s.accountPath(account.ID), data); err != nil {
		return &PersistenceError{Op: "write account", Err: err}
	}
	return nil
}

// writeFileAtomic writes to a temp file and renames it into place.
func (s *Store) writeFileAtomic(path string, data []byte) error {
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return err
	}
	return nil
}

// List returns all accounts resolvable from the index, in index order.
// Entries whose detail record is missing or unreadable are skipped.
func (s *Store) List() []models.Account {
	index := s.loadIndex()

	accounts := make([]models.Account, 0, len(index.Accounts))
	for _, summary := range index.Accounts {
		account, ok := s.loadAccount(summary.ID)
		if !ok {
			s.markDegraded(summary.ID, fmt.Errorf("detail record missing or unreadable"))
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts
}

// GetCurrent returns the account referenced by the current-account
// pointer, or nil when unset or unresolvable.
func (s *Store) GetCurrent() *models.Account {
	index := s.loadIndex()
	if index.CurrentAccountID == nil {
		return nil
	}
	account, ok := s.loadAccount(*index.CurrentAccountID)
	if !ok {
		return nil
	}
	return &account
}

// GetAccount returns the detail record for id, or ErrNotFound.
func (s *Store) GetAccount(id string) (models.Account, error) {
	account, ok := s.loadAccount(id)
	if !ok {
		return models.Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return account, nil
}

// Upsert creates or updates the account for username. A case-insensitive
// username match against the index reuses the existing record, replacing
// its token, email, plan and included-requests override and bumping
// last_used; otherwise a fresh account is created and appended. The
// detail record is written before the index.
func (s *Store) Upsert(username, token string, email, plan *string, includedRequests *int64) (models.Account, error) {
	id := AccountID(username)
	index := s.loadIndex()

	existing := -1
	for i, summary := range index.Accounts {
		if strings.EqualFold(summary.Username, username) {
			existing = i
			break
		}
	}

	var account models.Account
	if existing >= 0 {
		existingID := index.Accounts[existing].ID
		loaded, ok := s.loadAccount(existingID)
		if !ok {
			loaded = models.NewAccount(existingID, username, token, email, plan, includedRequests)
		}
		loaded.Username = username
		loaded.Token = token
		loaded.Email = email
		loaded.Plan = plan
		loaded.MonthlyIncludedRequests = includedRequests
		loaded.TouchLastUsed()
		account = loaded
	} else {
		account = models.NewAccount(id, username, token, email, plan, includedRequests)
		index.Accounts = append(index.Accounts, models.AccountSummary{
			ID:        id,
			Username:  username,
			CreatedAt: account.CreatedAt,
			LastUsed:  account.LastUsed,
		})
	}

	if err := s.saveAccount(account); err != nil {
		return models.Account{}, err
	}

	for i := range index.Accounts {
		if strings.EqualFold(index.Accounts[i].Username, username) {
			index.Accounts[i].Username = account.Username
			index.Accounts[i].LastUsed = account.LastUsed
			break
		}
	}

	if err := s.saveIndex(index); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// SaveAccount persists a mutated detail record without touching the
// index, used for quota refreshes.
func (s *Store) SaveAccount(account models.Account) error {
	return s.saveAccount(account)
}

// Switch makes the account with id current, bumping its last_used. The
// previously current account is left untouched.
func (s *Store) Switch(id string) (models.Account, error) {
	account, ok := s.loadAccount(id)
	if !ok {
		return models.Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	account.TouchLastUsed()
	if err := s.saveAccount(account); err != nil {
		return models.Account{}, err
	}

	index := s.loadIndex()
	for i := range index.Accounts {
		if index.Accounts[i].ID == id {
			index.Accounts[i].LastUsed = account.LastUsed
			break
		}
	}
	index.CurrentAccountID = &id
	if err := s.saveIndex(index); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// Remove deletes the account's index summary and detail record. The
// index is written first so a concurrent List never sees a summary whose
// file has already vanished. Removing the current account clears the
// current-account pointer.
func (s *Store) Remove(id string) error {
	index := s.loadIndex()

	filtered := index.Accounts[:0]
	for _, summary := range index.Accounts {
		if summary.ID != id {
			filtered = append(filtered, summary)
		}
	}
	index.Accounts = filtered

	if index.CurrentAccountID != nil && *index.CurrentAccountID == id {
		index.CurrentAccountID = nil
	}

	if err := s.saveIndex(index); err != nil {
		return err
	}

	path := s.accountPath(id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &PersistenceError{Op: "delete account", Err: err}
	}
	return nil
}

// RemoveMany removes each id in turn, stopping at the first failure.
func (s *Store) RemoveMany(ids []string) error {
	for _, id := range ids {
		if err := s.Remove(id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTags fully replaces the account's tag set.
func (s *Store) UpdateTags(id string, tags []string) (models.Account, error) {
	account, ok := s.loadAccount(id)
	if !ok {
		return models.Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	account.Tags = tags
	if err := s.saveAccount(account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}
