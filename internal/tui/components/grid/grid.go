// Package grid renders one month of habits as a matrix of day cells and
// tracks a movable cursor. It owns no storage; the parent model feeds it
// a snapshot and reacts to the messages it emits.
package grid

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitgrid/internal/datekit"
	"github.com/julianstephens/habitgrid/internal/models"
)

type ToggleMsg struct {
	Date  models.Date
	Habit string
}

type AddHabitMsg struct{}

type RenameHabitMsg struct {
	Index int
	Name  string
}

type DeleteHabitMsg struct {
	Index int
	Name  string
}

type EditHoursMsg struct {
	Date models.Date
}

type PrevMonthMsg struct{}

type NextMonthMsg struct{}

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Toggle    key.Binding
	Add       key.Binding
	Rename    key.Binding
	Delete    key.Binding
	Hours     key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add habit"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename habit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete habit"),
		),
		Hours: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "productive hours"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "jump to today"),
		),
	}
}

var (
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	futureStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	todayColStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true)
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hoursStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
)

// Model is the month grid. Rows are habits, columns are days.
type Model struct {
	keys  KeyMap
	month models.Month
	dates []models.Date
	today models.Date

	habitList []string
	completed map[models.Date]map[string]bool
	hours     map[models.Date]string

	cursorRow int
	cursorCol int
}

func New(month models.Month) Model {
	m := Model{
		keys:  DefaultKeyMap(),
		today: datekit.Today(),
	}
	m.SetMonth(month)
	return m
}

// SetMonth repoints the grid and clamps the cursor into the new month.
func (m *Model) SetMonth(month models.Month) {
	m.month = month
	m.dates = datekit.MonthDates(month)
	if m.cursorCol >= len(m.dates) {
		m.cursorCol = len(m.dates) - 1
	}
}

// SetData replaces the rendered snapshot. The cursor column follows
// today on first load via CursorToToday; here it only gets clamped.
func (m *Model) SetData(doc models.Document) {
	m.habitList = append([]string(nil), doc.HabitsByMonth[m.month]...)

	m.completed = make(map[models.Date]map[string]bool, len(m.dates))
	m.hours = make(map[models.Date]string, len(m.dates))
	for _, d := range m.dates {
		if done := doc.Completions[d]; len(done) > 0 {
			set := make(map[string]bool, len(done))
			for _, h := range done {
				set[h] = true
			}
			m.completed[d] = set
		}
		if raw := doc.ProductiveHours[d]; raw != "" {
			m.hours[d] = raw
		}
	}

	if m.cursorRow >= len(m.habitList) {
		m.cursorRow = len(m.habitList) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

// CursorToToday moves the cursor column to today when the grid shows the
// current month.
func (m *Model) CursorToToday() {
	m.today = datekit.Today()
	if !m.today.In(m.month) {
		return
	}
	for i, d := range m.dates {
		if d == m.today {
			m.cursorCol = i
			return
		}
	}
}

func (m Model) Month() models.Month { return m.month }

// CursorDate returns the date under the cursor.
func (m Model) CursorDate() models.Date {
	if len(m.dates) == 0 {
		return m.today
	}
	return m.dates[m.cursorCol]
}

// CursorHabit returns the habit row under the cursor.
func (m Model) CursorHabit() (int, string, bool) {
	if m.cursorRow < 0 || m.cursorRow >= len(m.habitList) {
		return 0, "", false
	}
	return m.cursorRow, m.habitList[m.cursorRow], true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursorRow < len(m.habitList)-1 {
			m.cursorRow++
		}
	case key.Matches(keyMsg, m.keys.Left):
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case key.Matches(keyMsg, m.keys.Right):
		if m.cursorCol < len(m.dates)-1 {
			m.cursorCol++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		if _, habit, ok := m.CursorHabit(); ok {
			date := m.CursorDate()
			return m, func() tea.Msg { return ToggleMsg{Date: date, Habit: habit} }
		}
	case key.Matches(keyMsg, m.keys.Add):
		return m, func() tea.Msg { return AddHabitMsg{} }
	case key.Matches(keyMsg, m.keys.Rename):
		if idx, habit, ok := m.CursorHabit(); ok {
			return m, func() tea.Msg { return RenameHabitMsg{Index: idx, Name: habit} }
		}
	case key.Matches(keyMsg, m.keys.Delete):
		if idx, habit, ok := m.CursorHabit(); ok {
			return m, func() tea.Msg { return DeleteHabitMsg{Index: idx, Name: habit} }
		}
	case key.Matches(keyMsg, m.keys.Hours):
		date := m.CursorDate()
		return m, func() tea.Msg { return EditHoursMsg{Date: date} }
	case key.Matches(keyMsg, m.keys.PrevMonth):
		return m, func() tea.Msg { return PrevMonthMsg{} }
	case key.Matches(keyMsg, m.keys.NextMonth):
		return m, func() tea.Msg { return NextMonthMsg{} }
	case key.Matches(keyMsg, m.keys.Today):
		m.CursorToToday()
	}

	return m, nil
}

func (m Model) View() string {
	if len(m.habitList) == 0 {
		return "\n  No habits this month.\n  Press 'a' to add one."
	}

	nameWidth := 0
	for _, h := range m.habitList {
		if len(h) > nameWidth {
			nameWidth = len(h)
		}
	}

	var b strings.Builder

	// Day-of-month header.
	b.WriteString(strings.Repeat(" ", nameWidth+2))
	for i, d := range m.dates {
		label := string(d[8:])
		cell := headerStyle
		if d == m.today {
			cell = todayColStyle
		}
		if i == m.cursorCol {
			cell = cell.Background(lipgloss.Color("236"))
		}
		b.WriteString(cell.Render(label))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for row, h := range m.habitList {
		name := nameStyle.Render(padRight(h, nameWidth))
		if row == m.cursorRow {
			name = cursorStyle.Render(padRight(h, nameWidth))
		}
		b.WriteString(name)
		b.WriteString("  ")

		for col, d := range m.dates {
			var cell string
			switch {
			case m.completed[d][h]:
				cell = completedStyle.Render("■ ")
			case datekit.Classify(d, m.today) == datekit.Future:
				cell = futureStyle.Render("· ")
			default:
				cell = missedStyle.Render("· ")
			}
			if row == m.cursorRow && col == m.cursorCol {
				cell = cursorStyle.Render(cellGlyph(m.completed[d][h]))
			}
			b.WriteString(cell)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	// Hours line under the grid for the cursor's date.
	date := m.CursorDate()
	if raw, ok := m.hours[date]; ok {
		b.WriteString("\n")
		b.WriteString(hoursStyle.Render("productive hours on " + string(date) + ": " + raw))
		b.WriteString("\n")
	}

	return b.String()
}

func cellGlyph(completed bool) string {
	if completed {
		return "■ "
	}
	return "· "
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
