// Package login provides the device-flow login tab.
package login

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/app"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/github"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/services"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/components"
)

// phase tracks where the login flow currently is.
type phase int

const (
	phaseIdle phase = iota
	phaseRequesting
	phaseWaiting
	phaseAdding
	phaseFailed
)

// slowDownBackoff is added to the poll interval when the server asks us
// to slow down.
const slowDownBackoff = 5 * time.Second

// pollTickMsg fires when the next poll is due.
type pollTickMsg struct{}

// deviceCodeMsg carries the result of a device code request.
type deviceCodeMsg struct {
	code *github.DeviceCode
	err  error
}

// pollResultMsg carries the result of a single token poll.
type pollResultMsg struct {
	result *github.PollResult
	err    error
}

// addFailedMsg signals that storing the granted account failed.
type addFailedMsg struct {
	err error
}

// keyMap defines the key bindings specific to the login tab.
type keyMap struct {
	Start  key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "start login"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the login tab state.
type Model struct {
	manager *services.Manager
	keys    keyMap
	spinner components.LoadingSpinner
	width   int
	height  int

	phase    phase
	code     *github.DeviceCode
	interval time.Duration
	deadline time.Time
	errText  string
}

// New creates a new login model.
func New(mgr *services.Manager) *Model {
	return &Model{
		manager: mgr,
		keys:    defaultKeyMap(),
		spinner: components.NewSpinner("Contacting GitHub..."),
		phase:   phaseIdle,
	}
}

// Init initializes the login tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick()
}

// Update handles messages for the login tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case deviceCodeMsg:
		return m.handleDeviceCode(msg)

	case pollTickMsg:
		return m.handlePollTick()

	case pollResultMsg:
		return m.handlePollResult(msg)

	case addFailedMsg:
		m.fail("Could not store the account: " + msg.err.Error())
		return m, nil

	case app.AccountAddedMsg:
		// The flow is complete, reset for the next login.
		m.reset()
		return m, nil

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Start):
		if m.phase == phaseIdle || m.phase == phaseFailed {
			m.phase = phaseRequesting
			m.errText = ""
			return m, m.requestDeviceCodeCmd()
		}

	case key.Matches(msg, m.keys.Cancel):
		if m.phase != phaseIdle {
			m.reset()
		}
	}
	return m, nil
}

func (m *Model) handleDeviceCode(msg deviceCodeMsg) (app.Tab, tea.Cmd) {
	if m.phase != phaseRequesting {
		return m, nil
	}
	if msg.err != nil {
		m.fail("Could not start login: " + msg.err.Error())
		return m, nil
	}

	m.phase = phaseWaiting
	m.code = msg.code
	m.interval = time.Duration(msg.code.Interval) * time.Second
	if m.interval <= 0 {
		m.interval = 5 * time.Second
	}
	m.deadline = time.Now().Add(time.Duration(msg.code.ExpiresIn) * time.Second)

	return m, m.schedulePoll()
}

func (m *Model) handlePollTick() (app.Tab, tea.Cmd) {
	if m.phase != phaseWaiting {
		return m, nil
	}
	if !m.deadline.IsZero() && time.Now().After(m.deadline) {
		m.fail("The device code expired before authorization. Start over to get a new code.")
		return m, nil
	}
	return m, m.pollCmd()
}

func (m *Model) handlePollResult(msg pollResultMsg) (app.Tab, tea.Cmd) {
	if m.phase != phaseWaiting {
		return m, nil
	}
	if msg.err != nil {
		m.fail("Login failed: " + msg.err.Error())
		return m, nil
	}

	switch msg.result.Status {
	case github.StatusGranted:
		m.phase = phaseAdding
		return m, m.addAccountCmd(msg.result.AccessToken)

	case github.StatusPending:
		return m, m.schedulePoll()

	case github.StatusSlowDown:
		m.interval += slowDownBackoff
		return m, m.schedulePoll()

	case github.StatusExpired:
		m.fail("The device code expired. Start over to get a new code.")
		return m, nil

	case github.StatusDenied:
		m.fail("Authorization was denied on GitHub.")
		return m, nil

	default:
		m.fail("GitHub returned an unexpected response: " + msg.result.ErrorCode)
		return m, nil
	}
}

func (m *Model) fail(text string) {
	m.phase = phaseFailed
	m.errText = text
	m.code = nil
}

func (m *Model) reset() {
	m.phase = phaseIdle
	m.code = nil
	m.errText = ""
	m.interval = 0
	m.deadline = time.Time{}
}

func (m *Model) requestDeviceCodeCmd() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		code, err := mgr.RequestDeviceCode()
		return deviceCodeMsg{code: code, err: err}
	}
}

func (m *Model) schedulePoll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m *Model) pollCmd() tea.Cmd {
	mgr := m.manager
	deviceCode := m.code.DeviceCode
	return func() tea.Msg {
		result, err := mgr.PollDeviceToken(deviceCode)
		return pollResultMsg{result: result, err: err}
	}
}

func (m *Model) addAccountCmd(token string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		account, err := mgr.AddAccount(token, nil, nil)
		if err != nil {
			return addFailedMsg{err: err}
		}
		return app.AccountAddedMsg{Account: account}
	}
}

// SetSize sets the available size for the login tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Start, m.keys.Cancel}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.keys.Start, m.keys.Cancel}}
}
