package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/auth"
	"github.com/julianstephens/habitgrid/internal/datekit"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/tui/components/grid"
)

type SessionState int

const (
	StateGrid SessionState = iota
	StateForm
	StateHours
	StateConfirmDelete
)

type formKind int

const (
	formNone formKind = iota
	formAddHabit
	formRenameHabit
	formSignIn
)

// tickMsg drives the periodic re-read of the repository so background
// sync results show up without user input.
type tickMsg time.Time

type signInResultMsg struct {
	ident models.Identity
	err   error
}

type habitFormModel struct {
	Name string
}

type signInFormModel struct {
	Email    string
	Password string
}

type Model struct {
	repo *habits.Repository
	auth *auth.Service
	log  *zap.Logger

	state SessionState
	keys  KeyMap
	help  help.Model
	grid  grid.Model

	form       *huh.Form
	formKind   formKind
	habitForm  *habitFormModel
	signInForm *signInFormModel

	hoursInput textinput.Model
	hoursDate  models.Date

	renameIndex int
	deleteIndex int
	deleteName  string

	demo      bool
	statusMsg string
	errMsg    string

	width    int
	height   int
	quitting bool
}

func NewModel(repo *habits.Repository, authSvc *auth.Service, log *zap.Logger) Model {
	g := grid.New(datekit.CurrentMonth())
	g.CursorToToday()

	m := Model{
		repo:  repo,
		auth:  authSvc,
		log:   log,
		state: StateGrid,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		grid:  g,
	}

	_, signedIn := authSvc.CurrentIdentity()
	m.demo = !signedIn
	m.refreshGrid()
	return m
}

// refreshGrid re-reads the document into the grid component. Signed-out
// sessions browse the demo document instead of the seeded one.
func (m *Model) refreshGrid() {
	if m.demo {
		m.grid.SetData(habits.DemoDocument())
		return
	}
	m.grid.SetData(m.repo.Snapshot())
}

func (m Model) ShortHelp() []key.Binding {
	gk := grid.DefaultKeyMap()
	return []key.Binding{gk.Toggle, gk.Add, gk.Hours, m.keys.Sync, m.keys.Account, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	gk := grid.DefaultKeyMap()
	return [][]key.Binding{
		{gk.Up, gk.Down, gk.Left, gk.Right, gk.Today},
		{gk.Toggle, gk.Add, gk.Rename, gk.Delete, gk.Hours},
		{gk.PrevMonth, gk.NextMonth, m.keys.Sync, m.keys.Account, m.keys.Quit, m.keys.Help},
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// newHabitForm builds the single-field name form used by both add and
// rename.
func newHabitForm(title string, model *habitFormModel) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			CharLimit(80).
			Value(&model.Name),
	))
}

func newSignInForm(model *signInFormModel) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(&model.Email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&model.Password),
	))
}
