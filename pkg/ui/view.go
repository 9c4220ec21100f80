package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current model state
func (m *Model) View() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorTitle)).
		Bold(true).
		Render(fmt.Sprintf("fwdctl - %s", m.cfg.RuleFile))

	active := 0
	for _, row := range m.rows {
		if row.Active {
			active++
		}
	}
	summaryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorActive))
	summary := summaryStyle.Render(fmt.Sprintf("%d/%d active", active, len(m.rows)))

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelp))
	help := helpStyle.Render(ActionForwardsNav)

	var top string
	if m.width >= 70 {
		spacing := m.width - lipgloss.Width(title) - lipgloss.Width(summary)
		if spacing > 0 {
			top = lipgloss.JoinHorizontal(lipgloss.Left, title, strings.Repeat(" ", spacing), summary)
		} else {
			top = title
		}
	} else {
		top = title
	}

	var message string
	if m.errorMsg != "" {
		message = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("Error: " + m.errorMsg)
	} else if m.statusMsg != "" {
		message = helpStyle.Render(m.statusMsg)
	}

	sections := []string{
		top,
		"",
		m.forwardsTable.View(),
		"",
		message,
		help,
	}
	return strings.Join(sections, "\n")
}
