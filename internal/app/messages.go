package app

import (
	"time"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// AccountsLoadedMsg contains loaded account data.
type AccountsLoadedMsg struct {
	Accounts []models.AccountWithStatus
	Current  *models.Account
}

// QuotaRefreshedMsg contains refreshed quota data for an account.
type QuotaRefreshedMsg struct {
	Username string
	Quota    *models.Quota
	Error    error
}

// SwitchAccountMsg requests switching the current account.
type SwitchAccountMsg struct {
	ID string
}

// SwitchAccountResultMsg contains the result of an account switch.
type SwitchAccountResultMsg struct {
	Username string
	Success  bool
	Error    error
}

// DeleteAccountsMsg requests deletion of one or more accounts.
type DeleteAccountsMsg struct {
	IDs []string
}

// DeleteAccountsResultMsg contains the result of an account deletion.
type DeleteAccountsResultMsg struct {
	Count   int
	Success bool
	Error   error
}

// UpdateTagsMsg requests replacing an account's tags.
type UpdateTagsMsg struct {
	ID   string
	Tags []string
}

// UpdateTagsResultMsg contains the result of a tag update.
type UpdateTagsResultMsg struct {
	Username string
	Success  bool
	Error    error
}

// AccountAddedMsg signals that a device-flow login completed and the
// account was stored.
type AccountAddedMsg struct {
	Account models.Account
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "accounts", "quota"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
