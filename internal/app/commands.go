package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadAccountsCmd returns a command that loads accounts with status flags.
func loadAccountsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return AccountsLoadedMsg{
			Accounts: mgr.Accounts(),
			Current:  mgr.Current(),
		}
	}
}

// refreshAllQuotaCmd returns a command that refreshes quota for all accounts.
func refreshAllQuotaCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.RefreshAll()
		return AccountsLoadedMsg{
			Accounts: mgr.Accounts(),
			Current:  mgr.Current(),
		}
	}
}

// refreshAccountCmd returns a command that refreshes quota for one account.
func refreshAccountCmd(mgr *services.Manager, id, username string) tea.Cmd {
	return func() tea.Msg {
		quota, err := mgr.RefreshAccount(id)
		return QuotaRefreshedMsg{
			Username: username,
			Quota:    quota,
			Error:    err,
		}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// switchAccountCmd returns a command that switches the current account.
func switchAccountCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		account, err := mgr.SwitchAccount(id)
		return SwitchAccountResultMsg{
			Username: account.Username,
			Success:  err == nil,
			Error:    err,
		}
	}
}

// deleteAccountsCmd returns a command that deletes accounts and their history.
func deleteAccountsCmd(mgr *services.Manager, ids []string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.RemoveAccounts(ids)
		return DeleteAccountsResultMsg{
			Count:   len(ids),
			Success: err == nil,
			Error:   err,
		}
	}
}

// updateTagsCmd returns a command that replaces an account's tags.
func updateTagsCmd(mgr *services.Manager, id string, tags []string) tea.Cmd {
	return func() tea.Msg {
		account, err := mgr.UpdateTags(id, tags)
		return UpdateTagsResultMsg{
			Username: account.Username,
			Success:  err == nil,
			Error:    err,
		}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadAccounts returns a command that loads accounts.
func (c *Commands) LoadAccounts() tea.Cmd {
	return loadAccountsCmd(c.manager)
}

// RefreshAllQuota returns a command that refreshes quota for all accounts.
func (c *Commands) RefreshAllQuota() tea.Cmd {
	return refreshAllQuotaCmd(c.manager)
}

// RefreshAccount returns a command that refreshes quota for one account.
func (c *Commands) RefreshAccount(id, username string) tea.Cmd {
	return refreshAccountCmd(c.manager, id, username)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// SwitchAccount returns a command that switches the current account.
func (c *Commands) SwitchAccount(id string) tea.Cmd {
	return switchAccountCmd(c.manager, id)
}

// DeleteAccounts returns a command that deletes accounts.
func (c *Commands) DeleteAccounts(ids []string) tea.Cmd {
	return deleteAccountsCmd(c.manager, ids)
}

// UpdateTags returns a command that replaces an account's tags.
func (c *Commands) UpdateTags(id string, tags []string) tea.Cmd {
	return updateTagsCmd(c.manager, id, tags)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
