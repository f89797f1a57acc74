package app

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabAccounts {
		t.Error("Default tab should be Accounts")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tabs placeholder, got %d", len(model.tabs))
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	msg := tea.WindowSizeMsg{Width: 100, Height: 50}

	newModel, _ := model.Update(msg)

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.width != 100 {
		t.Errorf("Width = %d, want 100", m.width)
	}
	if m.height != 50 {
		t.Errorf("Height = %d, want 50", m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_Update_TabSwitch(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 100
	model.height = 50

	msg := TabSwitchMsg{Tab: TabHistory}
	newModel, _ := model.Update(msg)
	m := newModel.(*Model)

	if m.activeTab != TabHistory {
		t.Errorf("ActiveTab = %v, want History", m.activeTab)
	}

	keyMsg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}}
	newModel, _ = m.Update(keyMsg)
	m = newModel.(*Model)
	if m.activeTab != TabLogin {
		t.Errorf("key '2' should switch to Login, got %v", m.activeTab)
	}
}

func TestModel_Update_NextPrevTab(t *testing.T) {
	model := NewModel(nil)
	model.ready = true

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyTab})
	if model.activeTab != TabLogin {
		t.Errorf("tab should advance to Login, got %v", model.activeTab)
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabAccounts {
		t.Errorf("shift+tab should go back to Accounts, got %v", model.activeTab)
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabHistory {
		t.Errorf("shift+tab should wrap to History, got %v", model.activeTab)
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	msg := TickMsg{Time: time.Now()}

	_, cmd := model.Update(msg)
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	// Not ready
	view := model.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	// Ready
	model.ready = true
	model.width = 80
	model.height = 24

	view = model.View()
	if !strings.Contains(view, "Accounts") {
		t.Error("View should show Accounts tab")
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 80
	model.height = 30

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !model.showHelp {
		t.Error("'?' should toggle help on")
	}

	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("help overlay should render shortcuts")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEscape})
	if model.showHelp {
		t.Error("esc should close help")
	}
}

func TestModel_AccountsLoaded(t *testing.T) {
	model := NewModel(nil)

	current := models.Account{ID: "copilot_a", Username: "alice"}
	msg := AccountsLoadedMsg{
		Accounts: []models.AccountWithStatus{{Account: current, IsCurrent: true}},
		Current:  &current,
	}
	model.Update(msg)

	if model.state.GetAccountCount() != 1 {
		t.Error("accounts should be stored in state")
	}
	if model.state.Loading.Initial {
		t.Error("initial loading should clear")
	}
}

func TestModel_AccountAddedSwitchesToAccountsTab(t *testing.T) {
	model := NewModel(nil)
	model.activeTab = TabLogin

	model.Update(AccountAddedMsg{Account: models.Account{Username: "octocat"}})

	if model.activeTab != TabAccounts {
		t.Errorf("adding an account should switch to the accounts tab, got %v", model.activeTab)
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil)

	model.Update(AddNotificationMsg{
		Type:     NotificationSuccess,
		Message:  "done",
		Duration: time.Minute,
	})
	if len(model.state.GetNotifications()) != 1 {
		t.Error("notification should be added")
	}

	toasts := model.renderNotifications()
	if len(toasts) != 1 {
		t.Errorf("got %d toasts, want 1", len(toasts))
	}
	if !strings.Contains(toasts[0], "[OK]") {
		t.Error("success toast should have an [OK] prefix")
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}

func TestTabID_String(t *testing.T) {
	cases := map[TabID]string{
		TabAccounts: "Accounts",
		TabLogin:    "Login",
		TabHistory:  "History",
		TabID(99):   "Unknown",
	}
	for id, want := range cases {
		if id.String() != want {
			t.Errorf("TabID(%d).String() = %s, want %s", id, id.String(), want)
		}
	}
}
