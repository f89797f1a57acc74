// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	stdsync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/config"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/db"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/github"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/services/sync"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/store"
)

const lowQuotaThresholdPercent = 5.0

type (
	// AccountsChangedEvent is emitted when the accounts list changes.
	AccountsChangedEvent struct {
		Accounts []models.AccountWithStatus
		Current  *models.Account
	}

	// QuotaUpdatedEvent is emitted when quota information is updated for an account.
	QuotaUpdatedEvent struct {
		AccountID string
		Username  string
		Quota     *models.Quota
	}

	// RefreshCompletedEvent summarizes a batch quota refresh.
	RefreshCompletedEvent struct {
		Succeeded int
		Total     int
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (AccountsChangedEvent) isServiceEvent()  {}
func (QuotaUpdatedEvent) isServiceEvent()     {}
func (RefreshCompletedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()            {}

// Manager wires the store, the GitHub client, the synchronizer and the
// history database together and routes their events to the TUI.
type Manager struct {
	mu          stdsync.RWMutex
	cfg         *config.Config
	store       *store.Store
	client      *github.Client
	sync        *sync.Service
	database    *db.DB
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	// last observed remaining percentage per account id, for
	// threshold-crossing notifications
	previousRemaining map[string]float64
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:               cfg,
		eventChan:         make(chan ServiceEvent, 100),
		stopChan:          make(chan struct{}),
		previousRemaining: make(map[string]float64),
	}

	var err error
	m.store, err = store.New(cfg.StorageRoot)
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		_ = m.store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.client = github.NewClient()
	m.sync = sync.New(m.store, m.client, 0)

	go m.routeEvents()
	go m.refreshLoop()

	return m, nil
}

// routeEvents forwards store events to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.store.Events():
			switch event.Type {
			case store.EventChanged:
				m.broadcastAccountsChanged()
			case store.EventError:
				m.broadcast(ErrorEvent{Service: "store", Error: event.Error})
			}

		case <-m.stopChan:
			return
		}
	}
}

// refreshLoop refreshes all quotas at the configured interval.
func (m *Manager) refreshLoop() {
	m.RefreshAll()

	interval := m.cfg.QuotaRefreshInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RefreshAll()
		case <-m.stopChan:
			return
		}
	}
}

// Accounts returns all stored accounts flagged with current-account
// status, in index order.
func (m *Manager) Accounts() []models.AccountWithStatus {
	accounts := m.store.List()
	current := m.store.GetCurrent()

	result := make([]models.AccountWithStatus, len(accounts))
	for i, account := range accounts {
		result[i] = models.AccountWithStatus{
			Account:   account,
			IsCurrent: current != nil && current.ID == account.ID,
		}
	}
	return result
}

// Current returns the current account, or nil when unset.
func (m *Manager) Current() *models.Account {
	return m.store.GetCurrent()
}

// RequestDeviceCode starts a device-flow login using the configured
// client id override.
func (m *Manager) RequestDeviceCode() (*github.DeviceCode, error) {
	return m.client.RequestDeviceCode(m.cfg.ClientID)
}

// PollDeviceToken performs one poll of a pending device-flow login.
func (m *Manager) PollDeviceToken(deviceCode string) (*github.PollResult, error) {
	return m.client.PollDeviceToken(m.cfg.ClientID, deviceCode)
}

// AddAccount stores the account behind a freshly granted token and
// broadcasts the change.
func (m *Manager) AddAccount(token string, plan *string, includedOverride *int64) (models.Account, error) {
	account, err := m.sync.AddAccount(token, plan, includedOverride)
	if err != nil {
		return models.Account{}, err
	}

	if account.Quota != nil {
		m.recordSample(account)
	}
	m.broadcastAccountsChanged()
	return account, nil
}

// SwitchAccount makes the given account current.
func (m *Manager) SwitchAccount(id string) (models.Account, error) {
	account, err := m.store.Switch(id)
	if err != nil {
		return models.Account{}, err
	}
	m.broadcastAccountsChanged()
	return account, nil
}

// RemoveAccounts deletes the given accounts and their recorded history.
func (m *Manager) RemoveAccounts(ids []string) error {
	if err := m.store.RemoveMany(ids); err != nil {
		return err
	}
	for _, id := range ids {
		if err := m.database.DeleteAccountHistory(id); err != nil {
			logger.Warn("failed to delete account history", "id", id, "error", err)
		}
		m.mu.Lock()
		delete(m.previousRemaining, id)
		m.mu.Unlock()
	}
	m.broadcastAccountsChanged()
	return nil
}

// UpdateTags replaces an account's tag set.
func (m *Manager) UpdateTags(id string, tags []string) (models.Account, error) {
	account, err := m.store.UpdateTags(id, tags)
	if err != nil {
		return models.Account{}, err
	}
	m.broadcastAccountsChanged()
	return account, nil
}

// RefreshAll refreshes every account's quota, records history samples
// and broadcasts per-account updates plus a batch summary.
func (m *Manager) RefreshAll() []sync.Result {
	results := m.sync.RefreshAll()

	for _, result := range results {
		if result.Err != nil {
			m.broadcast(ErrorEvent{Service: "sync", Error: result.Err})
			continue
		}
		m.handleQuotaUpdate(result.ID, result.Username, result.Quota)
	}

	m.broadcast(RefreshCompletedEvent{
		Succeeded: sync.SuccessCount(results),
		Total:     len(results),
	})
	return results
}

// RefreshAccount refreshes one account's quota.
func (m *Manager) RefreshAccount(id string) (*models.Quota, error) {
	quota, err := m.sync.RefreshAccount(id)
	if err != nil {
		return nil, err
	}

	if account, loadErr := m.store.GetAccount(id); loadErr == nil {
		m.handleQuotaUpdate(account.ID, account.Username, quota)
	}
	return quota, nil
}

// RefreshCurrent refreshes the current account's quota. Fails when no
// account is current.
func (m *Manager) RefreshCurrent() (*models.Quota, error) {
	current := m.store.GetCurrent()
	if current == nil {
		return nil, fmt.Errorf("%w: no current account", store.ErrNotFound)
	}
	return m.RefreshAccount(current.ID)
}

func (m *Manager) handleQuotaUpdate(id, username string, quota *models.Quota) {
	if quota == nil {
		return
	}

	if account, err := m.store.GetAccount(id); err == nil {
		m.recordSample(account)
	}
	m.checkNotifications(id, username, quota)
	m.broadcast(QuotaUpdatedEvent{AccountID: id, Username: username, Quota: quota})
}

func (m *Manager) recordSample(account models.Account) {
	if account.Quota == nil {
		return
	}
	sample := &models.QuotaSample{
		AccountID:         account.ID,
		Username:          account.Username,
		UsedRequests:      account.Quota.UsedRequests,
		IncludedRequests:  account.Quota.IncludedRequests,
		RemainingRequests: account.Quota.RemainingRequests,
		Plan:              account.Quota.CopilotPlan,
	}
	if err := m.database.InsertQuotaSample(sample); err != nil {
		logger.Warn("failed to record quota sample", "username", account.Username, "error", err)
	}
}

// checkNotifications raises a desktop notification when an account's
// remaining quota crosses below the threshold. Only downward crossings
// notify, so a persistently low account does not nag on every refresh.
func (m *Manager) checkNotifications(id, username string, quota *models.Quota) {
	newPercent := quota.RemainingPercent()

	m.mu.Lock()
	oldPercent, seen := m.previousRemaining[id]
	m.previousRemaining[id] = newPercent
	m.mu.Unlock()

	if !seen {
		return
	}

	if newPercent < lowQuotaThresholdPercent && oldPercent >= lowQuotaThresholdPercent {
		title := fmt.Sprintf("Low Copilot Quota: %s", username)
		body := fmt.Sprintf("Remaining premium requests are below %.0f%% (%.1f%%)", lowQuotaThresholdPercent, newPercent)
		_ = beeep.Notify(title, body, "")
	}
}

func (m *Manager) broadcastAccountsChanged() {
	m.broadcast(AccountsChangedEvent{
		Accounts: m.Accounts(),
		Current:  m.store.GetCurrent(),
	})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Store returns the account store.
func (m *Manager) Store() *store.Store {
	return m.store
}

// Database returns the history database for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// AccountHistory returns an account's recorded samples from the last N
// hours.
func (m *Manager) AccountHistory(id string, hours int) ([]models.QuotaSample, error) {
	return m.database.GetAccountHistory(id, hours)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.store.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
