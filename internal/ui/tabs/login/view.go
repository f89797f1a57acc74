package login

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/styles"
)

// View renders the login tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, styles.TitleStyle.Render("Add a GitHub Account"))

	switch m.phase {
	case phaseIdle:
		sections = append(sections, m.renderIdle())
	case phaseRequesting:
		sections = append(sections, m.renderSpinnerCard("Requesting a device code from GitHub..."))
	case phaseWaiting:
		sections = append(sections, m.renderWaiting())
	case phaseAdding:
		sections = append(sections, m.renderSpinnerCard("Authorized. Fetching account details..."))
	case phaseFailed:
		sections = append(sections, m.renderFailed())
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	cardWidth := m.width - 10
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}
	return cardWidth
}

func (m *Model) renderIdle() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		"",
		"Sign in with the GitHub device flow:",
		"",
		styles.HelpStyle.Render("  1. Press 's' to request a one-time code"),
		styles.HelpStyle.Render("  2. Open the verification page in your browser"),
		styles.HelpStyle.Render("  3. Enter the code and authorize the app"),
		"",
		styles.HelpStyle.Render("The account is stored locally once GitHub grants access."),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderSpinnerCard(label string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		"",
		m.spinner.View()+" "+styles.HelpStyle.Render(label),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderWaiting() string {
	uri := m.code.VerificationURI
	if m.code.VerificationURIComplete != "" {
		uri = m.code.VerificationURIComplete
	}

	remaining := time.Until(m.deadline).Round(time.Second)
	if remaining < 0 {
		remaining = 0
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		"Enter this code on GitHub:",
		"",
		styles.UserCodeStyle.Render(m.code.UserCode),
		"",
		styles.InfoTextStyle.Render(uri),
		"",
		m.spinner.View()+" "+styles.HelpStyle.Render(
			fmt.Sprintf("Waiting for authorization (expires in %s)", remaining)),
		"",
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(
		styles.CenterHorizontal(content, m.cardWidth()-4),
	)
}

func (m *Model) renderFailed() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		"",
		styles.ErrorTextStyle.Render(m.errText),
		"",
		styles.HelpStyle.Render("Press 's' to try again."),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderFooter() string {
	shortcuts := []string{
		styles.HelpKeyStyle.Render("s") + " start login",
		styles.HelpKeyStyle.Render("Esc") + " cancel",
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
