package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/components"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if len(m.samples) == 0 {
		return m.renderEmpty()
	}

	var sections []string

	sections = append(sections,
		m.renderHeader(),
		m.renderUsageChart(),
		m.renderRemainingSparkline(),
		m.renderSummary(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No quota samples recorded yet."),
		styles.HelpStyle.Render("Data will appear as usage snapshots are recorded."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	username := m.username
	if len(username) > 40 {
		username = username[:37] + "..."
	}

	title := styles.TitleStyle.Render("History: " + username)

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if len(m.samples) > 0 {
		first := m.samples[0].RecordedAt
		last := m.samples[len(m.samples)-1].RecordedAt
		subtitle = styles.HelpStyle.Render(fmt.Sprintf(
			"%d samples, %s → %s",
			len(m.samples),
			first.Local().Format("Jan 2 15:04"),
			last.Local().Format("Jan 2 15:04"),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderUsageChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Premium Requests Used"), "")

	data := make([]float64, len(m.samples))
	for i, s := range m.samples {
		data[i] = float64(s.UsedRequests)
	}

	chartWidth := max(cardWidth-12, 30)
	chartHeight := 8

	chart := components.RenderLineChart(data, chartWidth, chartHeight,
		fmt.Sprintf("Used requests over the last %s", m.timeRange.String()))

	for _, line := range strings.Split(chart, "\n") {
		rows = append(rows, "  "+line)
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRemainingSparkline() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Remaining Requests"), "")

	var remaining []float64
	for _, s := range m.samples {
		if s.RemainingRequests != nil {
			remaining = append(remaining, float64(*s.RemainingRequests))
		}
	}

	if len(remaining) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No remaining-quota data in this range"))
	} else {
		sparkWidth := max(cardWidth-8, 20)
		rows = append(rows, "  "+components.RenderSparkline(remaining, sparkWidth))
		rows = append(rows, "  "+styles.HelpStyle.Render(
			fmt.Sprintf("latest: %.0f remaining", remaining[len(remaining)-1])))
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSummary() string {
	cardWidth := max(m.width-6, 40)

	first := m.samples[0]
	last := m.samples[len(m.samples)-1]
	consumed := last.UsedRequests - first.UsedRequests
	if consumed < 0 {
		// Usage resets at the start of a billing cycle.
		consumed = last.UsedRequests
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Summary"), "")
	rows = append(rows, fmt.Sprintf("  Consumed in range: %s",
		lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(fmt.Sprintf("%d requests", consumed))))

	if last.IncludedRequests != nil && *last.IncludedRequests > 0 {
		percent := float64(last.UsedRequests) / float64(*last.IncludedRequests) * 100
		rows = append(rows, fmt.Sprintf("  Plan usage: %s of %d included",
			styles.GetQuotaStyle(100-percent).Render(fmt.Sprintf("%.1f%%", percent)),
			*last.IncludedRequests))
	}
	if last.Plan != nil && *last.Plan != "" {
		rows = append(rows, "  Plan: "+*last.Plan)
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
