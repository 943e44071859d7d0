package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/tui/components/grid"
	"github.com/julianstephens/habitgrid/internal/validation"
)

type syncedMsg struct{}

const demoHint = "Demo data. Press 'i' to sign in and start tracking."

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refreshGrid()
		return m, tick()

	case syncedMsg:
		m.statusMsg = "Synced."
		m.refreshGrid()
		return m, nil

	case signInResultMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.demo = false
		m.errMsg = ""
		m.statusMsg = "Signed in as " + msg.ident.Username
		m.repo.Resolve(&msg.ident)
		m.refreshGrid()
		return m, nil

	case grid.ToggleMsg:
		if m.demo {
			m.statusMsg = demoHint
			return m, nil
		}
		m.repo.ToggleCompletion(msg.Date, msg.Habit)
		m.refreshGrid()
		return m, nil

	case grid.AddHabitMsg:
		if m.demo {
			m.statusMsg = demoHint
			return m, nil
		}
		m.habitForm = &habitFormModel{}
		m.form = newHabitForm("New habit name", m.habitForm)
		m.formKind = formAddHabit
		m.state = StateForm
		return m, m.form.Init()

	case grid.RenameHabitMsg:
		if m.demo {
			m.statusMsg = demoHint
			return m, nil
		}
		m.habitForm = &habitFormModel{Name: msg.Name}
		m.form = newHabitForm("Rename habit", m.habitForm)
		m.formKind = formRenameHabit
		m.renameIndex = msg.Index
		m.state = StateForm
		return m, m.form.Init()

	case grid.DeleteHabitMsg:
		if m.demo {
			m.statusMsg = demoHint
			return m, nil
		}
		m.deleteIndex = msg.Index
		m.deleteName = msg.Name
		m.state = StateConfirmDelete
		return m, nil

	case grid.EditHoursMsg:
		if m.demo {
			m.statusMsg = demoHint
			return m, nil
		}
		ti := textinput.New()
		ti.Placeholder = "e.g. 6.30"
		ti.CharLimit = 5
		ti.SetValue(m.repo.HoursFor(msg.Date))
		ti.Focus()
		m.hoursInput = ti
		m.hoursDate = msg.Date
		m.state = StateHours
		return m, textinput.Blink

	case grid.PrevMonthMsg:
		m.grid.SetMonth(shiftMonth(m.grid.Month(), -1))
		m.refreshGrid()
		return m, nil

	case grid.NextMonthMsg:
		m.grid.SetMonth(shiftMonth(m.grid.Month(), +1))
		m.refreshGrid()
		return m, nil
	}

	switch m.state {
	case StateForm:
		return m.updateForm(msg)
	case StateHours:
		return m.updateHours(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m.updateGrid(msg)
}

func (m Model) updateGrid(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(keyMsg, m.keys.Sync):
			if m.demo {
				m.statusMsg = demoHint
				return m, nil
			}
			m.statusMsg = "Syncing..."
			return m, m.syncCmd()

		case key.Matches(keyMsg, m.keys.Account):
			if _, ok := m.auth.CurrentIdentity(); ok {
				m.repo.Flush(context.Background())
				m.repo.SignOut()
				if err := m.auth.SignOut(); err != nil {
					m.errMsg = err.Error()
				}
				m.demo = true
				m.statusMsg = "Signed out."
				m.refreshGrid()
				return m, nil
			}
			m.signInForm = &signInFormModel{}
			m.form = newSignInForm(m.signInForm)
			m.formKind = formSignIn
			m.state = StateForm
			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.state = StateGrid
		m.form = nil
		m.formKind = formNone
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	kind := m.formKind
	m.state = StateGrid
	m.form = nil
	m.formKind = formNone

	switch kind {
	case formAddHabit:
		name := strings.TrimSpace(m.habitForm.Name)
		month := m.grid.Month()
		m.repo.AddHabit(month)
		if name != "" {
			if err := validation.HabitName(name); err != nil {
				m.errMsg = err.Error()
			} else {
				m.repo.SetHabitName(month, len(m.repo.HabitsForMonth(month))-1, name)
			}
		}
		m.refreshGrid()

	case formRenameHabit:
		name := strings.TrimSpace(m.habitForm.Name)
		if err := validation.HabitName(name); err != nil {
			m.errMsg = err.Error()
		} else {
			m.repo.SetHabitName(m.grid.Month(), m.renameIndex, name)
		}
		m.refreshGrid()

	case formSignIn:
		email, password := m.signInForm.Email, m.signInForm.Password
		authSvc := m.auth
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			ident, err := authSvc.SignIn(ctx, email, password)
			return signInResultMsg{ident: ident, err: err}
		}
	}
	return m, cmd
}

func (m Model) updateHours(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = StateGrid
			return m, nil
		case "enter":
			raw := strings.TrimSpace(m.hoursInput.Value())
			if err := validation.ProductiveHours(raw); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.errMsg = ""
			m.repo.SetProductiveHours(m.hoursDate, raw)
			m.state = StateGrid
			m.refreshGrid()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.hoursInput, cmd = m.hoursInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y", "Y":
			m.repo.DeleteHabit(m.grid.Month(), m.deleteIndex)
			m.state = StateGrid
			m.statusMsg = "Deleted " + m.deleteName
			m.refreshGrid()
		case "n", "N", "esc", "q":
			m.state = StateGrid
		}
	}
	return m, nil
}

// syncCmd pushes any pending write and pulls the authoritative document.
func (m Model) syncCmd() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		repo.Flush(ctx)
		repo.SyncNow(ctx)
		return syncedMsg{}
	}
}

// shiftMonth steps a month key forward or backward across year edges.
func shiftMonth(month models.Month, delta int) models.Month {
	year, num := month.Year(), month.Number()
	num += delta
	for num < 1 {
		num += 12
		year--
	}
	for num > 12 {
		num -= 12
		year++
	}
	return models.MonthOf(year, num)
}
