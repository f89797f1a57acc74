// Package history provides the quota history tab.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/app"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/services"
)

// TimeRange selects how far back the history chart reaches.
type TimeRange int

const (
	// TimeRange24Hours shows the last day.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows the last week.
	TimeRange7Days
	// TimeRange30Days shows the last month.
	TimeRange30Days
)

// String returns a human-readable label for the range.
func (r TimeRange) String() string {
	switch r {
	case TimeRange24Hours:
		return "24 hours"
	case TimeRange7Days:
		return "7 days"
	case TimeRange30Days:
		return "30 days"
	default:
		return "unknown"
	}
}

// Hours returns the range in hours for history queries.
func (r TimeRange) Hours() int {
	switch r {
	case TimeRange24Hours:
		return 24
	case TimeRange7Days:
		return 24 * 7
	case TimeRange30Days:
		return 24 * 30
	default:
		return 24
	}
}

// Next cycles to the next range.
func (r TimeRange) Next() TimeRange {
	switch r {
	case TimeRange24Hours:
		return TimeRange7Days
	case TimeRange7Days:
		return TimeRange30Days
	default:
		return TimeRange24Hours
	}
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	accountID string
	username  string
	samples   []models.QuotaSample
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	timeRange   TimeRange
	accountID   string
	username    string
	samples     []models.QuotaSample
	loaded      bool
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: TimeRange24Hours,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.loadHistoryCmd()
}

// loadHistoryCmd creates a command to load history data for the
// selected account.
func (m *Model) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return historyErrorMsg{err: "Services not initialized"}
		}

		accounts := m.state.GetAccounts()
		if len(accounts) == 0 {
			return historyErrorMsg{err: "No accounts configured"}
		}

		// Follow the accounts tab selection, falling back to the
		// current account and then the first one.
		var target *models.AccountWithStatus
		selectedIdx := m.state.GetSelectedAccountIndex()
		if selectedIdx >= 0 && selectedIdx < len(accounts) {
			target = &accounts[selectedIdx]
		} else {
			for i := range accounts {
				if accounts[i].IsCurrent {
					target = &accounts[i]
					break
				}
			}
			if target == nil {
				target = &accounts[0]
			}
		}

		samples, err := m.services.AccountHistory(target.ID, m.timeRange.Hours())
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		return historyLoadedMsg{
			accountID: target.ID,
			username:  target.Username,
			samples:   samples,
		}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.accountID = msg.accountID
		m.username = msg.username
		m.samples = msg.samples
		m.loaded = true
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.AccountsLoadedMsg:
		return m.handleAccountsLoaded()

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			return m.handleAccountsLoaded()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAccountsLoaded() (app.Tab, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	// Reload when nothing has loaded yet or the selection moved to a
	// different account.
	reload := !m.loaded
	accounts := m.state.GetAccounts()
	selectedIdx := m.state.GetSelectedAccountIndex()
	if selectedIdx >= 0 && selectedIdx < len(accounts) && accounts[selectedIdx].ID != m.accountID {
		reload = true
	}

	if reload {
		m.loading = true
		return m, m.loadHistoryCmd()
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
