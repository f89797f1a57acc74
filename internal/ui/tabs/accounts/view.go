package accounts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/components"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/styles"
)

// View renders the accounts tab.
func (m *Model) View() string {
	if m.state.AnyLoading() && m.state.GetAccountCount() == 0 {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())

	if m.editingTags {
		sections = append(sections, m.renderTagsForm())
	} else if m.confirmDelete {
		sections = append(sections, m.renderDeleteConfirm())
		sections = append(sections, m.renderTable())
	} else {
		sections = append(sections, m.renderTable())
		sections = append(sections, m.renderSelectedDetail())
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the accounts tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Copilot Accounts")

	accountCount := m.state.GetAccountCount()
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d accounts configured", accountCount))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTable renders the accounts table.
func (m *Model) renderTable() string {
	if m.state.GetAccountCount() == 0 {
		return m.renderEmptyState()
	}

	m.updateTableData()

	cardWidth := m.width - 6
	if cardWidth < 60 {
		cardWidth = 60
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

// renderEmptyState renders the empty state when no accounts exist.
func (m *Model) renderEmptyState() string {
	cardWidth := m.width - 6
	if cardWidth < 40 {
		cardWidth = 40
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Accounts Configured"),
		"",
		styles.HelpStyle.Render("Sign in with GitHub to start tracking Copilot usage."),
		"",
		styles.InfoTextStyle.Render("Press 'n' to add a new account"),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderSelectedDetail renders a usage bar and tags for the selected account.
func (m *Model) renderSelectedDetail() string {
	account := m.selectedAccount()
	if account == nil {
		return ""
	}

	barWidth := m.width - 12
	if barWidth < 40 {
		barWidth = 40
	}

	var rows []string

	if account.Quota != nil && account.Quota.IncludedRequests != nil && *account.Quota.IncludedRequests > 0 {
		rows = append(rows, components.SimpleQuotaBar(account.Quota.UsedPercent(), account.Username, barWidth))
	} else {
		rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("%s: no quota data yet, press 'r' to refresh", account.Username)))
	}

	if account.Email != nil && *account.Email != "" {
		rows = append(rows, styles.HelpStyle.Render("email: "+*account.Email))
	}
	if len(account.Tags) > 0 {
		rows = append(rows, styles.InfoTextStyle.Render("tags: "+strings.Join(account.Tags, ", ")))
	}

	return lipgloss.NewStyle().MarginLeft(2).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderTagsForm renders the tag editing form.
func (m *Model) renderTagsForm() string {
	cardWidth := m.width - 10
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}

	var rows []string

	rows = append(rows, styles.CardTitleStyle.Render("Edit Tags"))
	rows = append(rows, "")
	rows = append(rows, styles.FocusedStyle.Render("> Tags (comma separated):"))
	rows = append(rows, styles.FocusedBorderStyle.Width(cardWidth-10).Render(m.tagsInput.View()))
	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("Enter: save | Esc: cancel"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return styles.ModalContentStyle.Width(cardWidth).Render(content)
}

// renderDeleteConfirm renders the delete confirmation dialog.
func (m *Model) renderDeleteConfirm() string {
	cardWidth := 50

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Account?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render(m.deleteUsername),
		"",
		"Its stored token and history will be removed.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(cardWidth).Render(content),
		m.width,
	)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string

	if m.editingTags {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " save",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	} else if m.confirmDelete {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	} else {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " switch",
			styles.HelpKeyStyle.Render("d") + " delete",
			styles.HelpKeyStyle.Render("n") + " add",
			styles.HelpKeyStyle.Render("t") + " tags",
			styles.HelpKeyStyle.Render("r") + " refresh",
		}
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
