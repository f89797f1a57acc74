package accounts

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/app"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func seededState() *app.State {
	state := app.NewState()
	state.SetLoading("initial", false)

	alice := models.Account{
		ID:       "copilot_a",
		Username: "alice",
		Tags:     []string{"work"},
		Quota: &models.Quota{
			UsedRequests:      120,
			IncludedRequests:  int64Ptr(300),
			RemainingRequests: int64Ptr(180),
			CopilotPlan:       strPtr("individual"),
		},
	}
	bob := models.Account{ID: "copilot_b", Username: "bob"}

	state.SetAccounts([]models.AccountWithStatus{
		{Account: alice, IsCurrent: true},
		{Account: bob},
	}, &alice)
	return state
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestUpdateTableData(t *testing.T) {
	m := New(seededState())
	m.updateTableData()

	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "alice" {
		t.Errorf("first row username = %q", rows[0][0])
	}
	if rows[0][2] != "120" {
		t.Errorf("used column = %q, want 120", rows[0][2])
	}
	if !strings.HasPrefix(rows[0][5], "* ") {
		t.Errorf("current account status should be starred, got %q", rows[0][5])
	}
	if rows[1][5] != "NO QUOTA" {
		t.Errorf("account without quota should read NO QUOTA, got %q", rows[1][5])
	}
}

func TestEnterSwitchesSelectedAccount(t *testing.T) {
	m := New(seededState())
	m.updateTableData()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should emit a switch message")
	}
	msg := cmd()
	switchMsg, ok := msg.(app.SwitchAccountMsg)
	if !ok {
		t.Fatalf("got %T, want SwitchAccountMsg", msg)
	}
	if switchMsg.ID != "copilot_a" {
		t.Errorf("switch target = %q, want copilot_a", switchMsg.ID)
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	m := New(seededState())
	m.updateTableData()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if !m.confirmDelete {
		t.Fatal("'d' should open the confirmation")
	}
	if m.deleteUsername != "alice" {
		t.Errorf("delete target = %q, want alice", m.deleteUsername)
	}

	// Decline first
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.confirmDelete {
		t.Error("'n' should close the confirmation")
	}

	// Confirm
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if cmd == nil {
		t.Fatal("'y' should emit a delete message")
	}
	deleteMsg, ok := cmd().(app.DeleteAccountsMsg)
	if !ok {
		t.Fatalf("got %T, want DeleteAccountsMsg", cmd())
	}
	if !reflect.DeepEqual(deleteMsg.IDs, []string{"copilot_a"}) {
		t.Errorf("delete ids = %v", deleteMsg.IDs)
	}
}

func TestTagEditingFlow(t *testing.T) {
	m := New(seededState())
	m.updateTableData()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if !m.editingTags {
		t.Fatal("'t' should open the tags editor")
	}
	if m.tagsInput.Value() != "work" {
		t.Errorf("editor should pre-fill existing tags, got %q", m.tagsInput.Value())
	}

	m.tagsInput.SetValue("work, personal , ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should emit an update message")
	}
	tagsMsg, ok := cmd().(app.UpdateTagsMsg)
	if !ok {
		t.Fatalf("got %T, want UpdateTagsMsg", cmd())
	}
	if !reflect.DeepEqual(tagsMsg.Tags, []string{"work", "personal"}) {
		t.Errorf("tags = %v, want [work personal]", tagsMsg.Tags)
	}
	if m.editingTags {
		t.Error("editor should close on enter")
	}
}

func TestAddKeySwitchesToLoginTab(t *testing.T) {
	m := New(seededState())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if cmd == nil {
		t.Fatal("'n' should emit a tab switch")
	}
	tabMsg, ok := cmd().(app.TabSwitchMsg)
	if !ok || tabMsg.Tab != app.TabLogin {
		t.Errorf("got %v, want switch to login tab", cmd())
	}
}

func TestParseTags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"work", []string{"work"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		got := parseTags(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseTags(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestView(t *testing.T) {
	m := New(seededState())
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Copilot Accounts") {
		t.Error("view should show the title")
	}
	if !strings.Contains(view, "2 accounts configured") {
		t.Error("view should show the account count")
	}
}

func TestView_EmptyState(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "No Accounts Configured") {
		t.Error("view should show the empty state")
	}
}

func TestFormatResetDate(t *testing.T) {
	if got := formatResetDate("2025-07-01T00:00:00Z"); got != "2025-07-01" {
		t.Errorf("formatResetDate = %q", got)
	}
	if got := formatResetDate("2025-07-01"); got != "2025-07-01" {
		t.Errorf("formatResetDate = %q", got)
	}
}
