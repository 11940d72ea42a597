package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == StateHelp {
		return m.renderHelp()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	)
}

// renderHeader renders the scope title and the active filters.
func (m Model) renderHeader() string {
	title := m.theme.Title.Render(m.vc.Scope.String())

	currency := "All currencies"
	if m.vc.Currency != "" {
		currency = string(m.vc.Currency)
	}
	month := "All months"
	if m.vc.Month != nil {
		month = m.vc.Month.Label()
	}

	filters := strings.Join([]string{
		"Sort by Date " + m.vc.Sort.Arrow(),
		currency,
		month,
	}, " │ ")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(filters),
	)
}

// renderBody renders the grouped list or a placeholder.
func (m Model) renderBody() string {
	if m.list.Empty() {
		text := "No payments found"
		if !m.ready || !m.exhausted {
			text = m.spinner.View() + " Loading payments..."
		}
		return lipgloss.NewStyle().
			Foreground(m.theme.Muted).
			Height(m.list.PageSize()).
			Render(text)
	}
	return m.list.View()
}

// renderFooter renders the prompt line, the status line and the key hints.
func (m Model) renderFooter() string {
	var status string
	switch m.state {
	case StateConfirmDelete:
		p := m.pendingDelete
		status = m.theme.StatusWarning.Render(fmt.Sprintf(
			"Delete %s %s → %s? (y/n)", p.FormatAmount(), p.PayedFrom, p.PayedTo))
	case StateMonthPrompt:
		status = m.theme.StatusInfo.Render("Month (empty for all): ") + m.monthInput.View()
	default:
		switch {
		case m.toast.Message() != "":
			status = m.toast.View()
		case m.engine.Loading():
			status = m.spinner.View() + " Loading more..."
		case m.exhausted && !m.list.Empty():
			status = lipgloss.NewStyle().Foreground(m.theme.Muted).Render("End of list")
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		status,
		m.help.ShortHelpView(m.keymap.ShortHelp()),
	)
}

// renderHelp renders the help screen.
func (m Model) renderHelp() string {
	title := m.theme.Title.Render("spend - Help")
	footer := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press any key to close help")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.theme.BorderedBox.
			MaxHeight(m.height-2).
			Render(
				lipgloss.JoinVertical(
					lipgloss.Left,
					title,
					"",
					m.help.FullHelpView(m.keymap.FullHelp()),
					"",
					footer,
				),
			),
	)
}
