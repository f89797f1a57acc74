package app

import (
	"testing"
	"time"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if len(s.Accounts) != 0 {
		t.Error("Accounts should be empty")
	}
	if s.Loading.Initial != true {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("accounts", true)
	if !s.Loading.Accounts {
		t.Error("Accounts loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("accounts", false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}
}

func TestState_Accounts(t *testing.T) {
	s := NewState()

	current := models.Account{ID: "copilot_b", Username: "bob"}
	accs := []models.AccountWithStatus{
		{Account: models.Account{ID: "copilot_a", Username: "alice"}},
		{Account: current, IsCurrent: true},
	}

	s.SetAccounts(accs, &current)

	if s.GetAccountCount() != 2 {
		t.Errorf("GetAccountCount = %d, want 2", s.GetAccountCount())
	}

	got := s.GetCurrent()
	if got == nil {
		t.Fatal("GetCurrent returned nil")
	}
	if got.Username != "bob" {
		t.Errorf("current username = %s, want bob", got.Username)
	}

	gotAccs := s.GetAccounts()
	if len(gotAccs) != 2 {
		t.Errorf("GetAccounts returned %d accounts, want 2", len(gotAccs))
	}
}

func TestState_SelectionClampedOnShrink(t *testing.T) {
	s := NewState()

	accs := []models.AccountWithStatus{
		{Account: models.Account{ID: "copilot_a", Username: "alice"}},
		{Account: models.Account{ID: "copilot_b", Username: "bob"}},
	}
	s.SetAccounts(accs, nil)
	s.SetSelectedAccountIndex(1)

	s.SetAccounts(accs[:1], nil)
	if s.GetSelectedAccountIndex() != 0 {
		t.Errorf("selection should clamp to last account, got %d", s.GetSelectedAccountIndex())
	}

	selected := s.SelectedAccount()
	if selected == nil || selected.Username != "alice" {
		t.Errorf("SelectedAccount = %+v, want alice", selected)
	}
}

func TestState_SelectedAccount_Empty(t *testing.T) {
	s := NewState()
	if s.SelectedAccount() != nil {
		t.Error("SelectedAccount should be nil with no accounts")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationSuccess, "done", time.Minute)
	if id == "" {
		t.Error("AddNotification should return an id")
	}
	if len(s.GetNotifications()) != 1 {
		t.Error("should have one notification")
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}
}

func TestState_NotificationExpiry(t *testing.T) {
	s := NewState()

	s.AddNotification(NotificationInfo, "quick", time.Nanosecond)
	time.Sleep(time.Millisecond)

	if len(s.GetNotifications()) != 0 {
		t.Error("expired notification should not be returned")
	}

	s.ClearExpiredNotifications()
	if len(s.notifications) != 0 {
		t.Error("expired notification should be cleared")
	}
}

func TestState_NotificationCap(t *testing.T) {
	s := NewState()

	for i := 0; i < 15; i++ {
		s.AddNotification(NotificationInfo, "msg", time.Minute)
	}
	if len(s.GetNotifications()) != 10 {
		t.Errorf("notifications should cap at 10, got %d", len(s.GetNotifications()))
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Still loading...")

	notifications := s.GetNotifications()
	if len(notifications) != 1 {
		t.Fatalf("loading notification should be singular, got %d", len(notifications))
	}
	if notifications[0].Message != "Still loading..." {
		t.Errorf("message = %q", notifications[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	cases := map[NotificationType]string{
		NotificationSuccess: "success",
		NotificationError:   "error",
		NotificationWarning: "warning",
		NotificationInfo:    "info",
	}
	for typ, want := range cases {
		if typ.String() != want {
			t.Errorf("%d.String() = %s, want %s", typ, typ.String(), want)
		}
	}
}
