// Package accounts provides the account management tab.
package accounts

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/app"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/components"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the accounts tab.
type keyMap struct {
	Enter   key.Binding
	Delete  key.Binding
	Add     key.Binding
	Refresh key.Binding
	Tags    key.Binding
	Escape  key.Binding
}

// defaultKeyMap returns the default key bindings for the accounts tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "switch account"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Add: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "add account"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh quota"),
		),
		Tags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit tags"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the accounts tab state.
type Model struct {
	state  *app.State
	table  table.Model
	width  int
	height int

	// row index to account id, rebuilt with the table rows
	rowIDs []string

	spinner components.LoadingSpinner
	keys    keyMap

	confirmDelete  bool
	deleteID       string
	deleteUsername string

	editingTags bool
	tagsID      string
	tagsInput   textinput.Model
}

// New creates a new accounts model.
func New(state *app.State) *Model {
	tagsInput := textinput.New()
	tagsInput.Placeholder = "work, personal"
	tagsInput.CharLimit = 200
	tagsInput.Width = 40

	columns := []table.Column{
		{Title: "Username", Width: 20},
		{Title: "Plan", Width: 12},
		{Title: "Used", Width: 10},
		{Title: "Remaining", Width: 10},
		{Title: "Reset", Width: 12},
		{Title: "Status", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:     state,
		table:     t,
		tagsInput: tagsInput,
		spinner:   components.NewSpinner("Loading accounts..."),
		keys:      defaultKeyMap(),
	}
}

// Init initializes the accounts tab.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the accounts tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	if m.editingTags {
		return m.updateTagsForm(msg)
	}

	if m.confirmDelete {
		return m.updateDeleteConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Enter):
			if account := m.selectedAccount(); account != nil {
				id := account.ID
				return m, func() tea.Msg {
					return app.SwitchAccountMsg{ID: id}
				}
			}

		case key.Matches(msg, m.keys.Delete):
			if account := m.selectedAccount(); account != nil {
				m.confirmDelete = true
				m.deleteID = account.ID
				m.deleteUsername = account.Username
			}

		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg {
				return app.TabSwitchMsg{Tab: app.TabLogin}
			}

		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg {
				return app.RefreshMsg{Resource: "quota"}
			}

		case key.Matches(msg, m.keys.Tags):
			if account := m.selectedAccount(); account != nil {
				m.editingTags = true
				m.tagsID = account.ID
				m.tagsInput.SetValue(strings.Join(account.Tags, ", "))
				m.tagsInput.Focus()
				return m, textinput.Blink
			}

		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			m.state.SetSelectedAccountIndex(m.table.Cursor())
			cmds = append(cmds, cmd)
		}

	case app.AccountsLoadedMsg:
		m.updateTableData()
	}

	return m, tea.Batch(cmds...)
}

// updateTagsForm handles the tag editing form.
func (m *Model) updateTagsForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.editingTags = false
			m.tagsInput.Blur()
			return m, nil

		case "enter":
			m.editingTags = false
			m.tagsInput.Blur()
			id := m.tagsID
			tags := parseTags(m.tagsInput.Value())
			return m, func() tea.Msg {
				return app.UpdateTagsMsg{ID: id, Tags: tags}
			}
		}
	}

	var cmd tea.Cmd
	m.tagsInput, cmd = m.tagsInput.Update(msg)
	return m, cmd
}

// parseTags splits a comma-separated tag list, dropping empties.
func parseTags(value string) []string {
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.confirmDelete = false
			id := m.deleteID
			m.deleteID = ""
			m.deleteUsername = ""
			return m, func() tea.Msg {
				return app.DeleteAccountsMsg{IDs: []string{id}}
			}
		case "n", "N", "esc":
			m.confirmDelete = false
			m.deleteID = ""
			m.deleteUsername = ""
			return m, nil
		}
	}
	return m, nil
}

// selectedAccount returns the account under the table cursor.
func (m *Model) selectedAccount() *models.AccountWithStatus {
	accounts := m.state.GetAccounts()
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(accounts) {
		return nil
	}
	return &accounts[cursor]
}

// updateTableData updates the table with current account data.
func (m *Model) updateTableData() {
	accounts := m.state.GetAccounts()
	rows := make([]table.Row, 0, len(accounts))
	m.rowIDs = make([]string, 0, len(accounts))

	for _, acc := range accounts {
		plan := "-"
		used := "-"
		remaining := "-"
		reset := "-"
		status := "OK"

		if acc.Plan != nil && *acc.Plan != "" {
			plan = *acc.Plan
		}

		if acc.Quota != nil {
			if acc.Quota.CopilotPlan != nil && *acc.Quota.CopilotPlan != "" {
				plan = *acc.Quota.CopilotPlan
			}
			used = fmt.Sprintf("%d", acc.Quota.UsedRequests)
			if acc.Quota.RemainingRequests != nil {
				remaining = fmt.Sprintf("%d", *acc.Quota.RemainingRequests)
				if *acc.Quota.RemainingRequests == 0 {
					status = "EXHAUSTED"
				}
			}
			if acc.Quota.QuotaResetDate != nil {
				reset = formatResetDate(*acc.Quota.QuotaResetDate)
			}
		} else {
			status = "NO QUOTA"
		}

		if acc.IsCurrent {
			status = "* " + status
		}

		rows = append(rows, table.Row{
			acc.Username,
			plan,
			used,
			remaining,
			reset,
			status,
		})
		m.rowIDs = append(m.rowIDs, acc.ID)
	}

	m.table.SetRows(rows)
}

// formatResetDate trims a reset timestamp down to its date part.
func formatResetDate(value string) string {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format("2006-01-02")
	}
	if len(value) > 10 {
		return value[:10]
	}
	return value
}

// SetSize sets the available size for the accounts tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(3, height-12))

	usernameWidth := width - 70
	if usernameWidth < 15 {
		usernameWidth = 15
	}
	if usernameWidth > 30 {
		usernameWidth = 30
	}

	columns := []table.Column{
		{Title: "Username", Width: usernameWidth},
		{Title: "Plan", Width: 12},
		{Title: "Used", Width: 10},
		{Title: "Remaining", Width: 10},
		{Title: "Reset", Width: 12},
		{Title: "Status", Width: 12},
	}
	m.table.SetColumns(columns)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editingTags {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save tags")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Enter,
		m.keys.Delete,
		m.keys.Add,
		m.keys.Tags,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Enter, m.keys.Delete},
		{m.keys.Add, m.keys.Refresh, m.keys.Tags},
	}
}
