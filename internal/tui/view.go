package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateForm:
		content = m.form.View()
	case StateHours:
		content = m.viewHours()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = docStyle.Render(m.grid.View())
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
		quoteStyle.Render("\""+dailyQuote()+"\""),
	)
	return ui
}

func (m Model) viewHeader() string {
	title := titleStyle.Render("habitgrid " + string(m.grid.Month()))

	var account string
	switch {
	case m.demo:
		account = demoStyle.Render("DEMO")
	default:
		if ident, ok := m.auth.CurrentIdentity(); ok {
			account = accountStyle.Render(ident.Username)
		} else {
			account = syncingStyle.Render("resolving...")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, account)
}

func (m Model) viewStatus() string {
	if m.errMsg != "" {
		return errorStyle.Render("✗ " + m.errMsg)
	}
	if m.statusMsg != "" {
		return statusStyle.Render(m.statusMsg)
	}
	return ""
}

func (m Model) viewHours() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		docStyle.Render(m.grid.View()),
		accountStyle.Render("Productive hours for "+string(m.hoursDate)+" (0-20, minutes after the dot):"),
		docStyle.Render(m.hoursInput.View()),
	)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete habit \""+m.deleteName+"\" and its history this month?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
