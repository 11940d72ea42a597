package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
	"github.com/Veraticus/spend/internal/paging"
	"github.com/Veraticus/spend/internal/tui/components"
	"github.com/Veraticus/spend/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the current state of the TUI.
type State int

const (
	StateList State = iota
	StateConfirmDelete
	StateMonthPrompt
	StateHelp
)

// Model holds the main TUI state.
type Model struct {
	theme           themes.Theme
	engine          *paging.Engine
	lastError       error
	pendingDelete   *model.Payment
	vc              model.ViewContext
	toast           components.ToastModel
	list            components.PaymentListModel
	scopes          []model.Scope
	monthInput      textinput.Model
	spinner         spinner.Model
	help            help.Model
	config          Config
	keymap          KeyMap
	height          int
	width           int
	state           State
	exhausted       bool
	quitting        bool
	unauthenticated bool
	ready           bool
}

// newModel creates a new model with the given configuration.
func newModel(engine *paging.Engine, cfg Config) Model {
	monthInput := textinput.New()
	monthInput.Placeholder = "YYYY-MM"
	monthInput.CharLimit = 7

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Theme.StatusPending

	m := Model{
		theme:      cfg.Theme,
		engine:     engine,
		vc:         cfg.Context,
		toast:      components.NewToast(cfg.Theme),
		list:       components.NewPaymentList(cfg.Theme),
		scopes:     []model.Scope{model.SelfScope},
		monthInput: monthInput,
		spinner:    sp,
		help:       help.New(),
		config:     cfg,
		keymap:     DefaultKeyMap(),
		width:      cfg.Width,
		height:     cfg.Height,
		state:      StateList,
	}
	if !cfg.Context.Scope.IsSelf() {
		m.scopes = append(m.scopes, cfg.Context.Scope)
	}
	m.handleResize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadFirstPage(m.vc),
		m.loadDelegates(),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case deleteDoneMsg:
		if msg.err != nil {
			return m, m.showError(msg.err, "Failed to delete payment")
		}
		m.refreshList()
		return m, m.showToast("Payment deleted", components.ToastSuccess)

	case delegatesLoadedMsg:
		if msg.err != nil {
			return m, m.showError(msg.err, "Failed to load shared accounts")
		}
		m.setDelegates(msg.emails)
		return m, nil

	case toastExpiredMsg:
		m.toast.Dismiss(msg.seq)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case StateConfirmDelete:
			return m.handleConfirmKeys(msg)
		case StateMonthPrompt:
			return m.handleMonthKeys(msg)
		case StateHelp:
			m.state = StateList
			return m, nil
		default:
			return m.handleListKeys(msg)
		}
	}

	return m, nil
}

func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.result.Stale {
		return m, nil
	}
	// Commands run concurrently, so a load for a context the user already
	// left can be the last one to reach the engine. Its result is not shown,
	// and the engine is sent back to the context on screen.
	if !m.engine.Context().Equal(m.vc) {
		return m, m.loadFirstPage(m.vc)
	}
	if !msg.vc.Equal(m.vc) {
		return m, nil
	}
	m.ready = true
	if msg.err != nil {
		return m, m.showError(msg.err, "Failed to fetch payments")
	}

	m.exhausted = msg.result.Exhausted
	m.refreshList()

	// Keep loading while the filtered list is too short to scroll.
	if !m.exhausted {
		return m, m.nearEnd()
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.state = StateHelp
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		m.list.MoveBy(-1)
		return m, nil
	case key.Matches(msg, m.keymap.Down):
		m.list.MoveBy(1)
		return m, m.nearEnd()
	case key.Matches(msg, m.keymap.PageUp):
		m.list.MoveBy(-m.list.PageSize())
		return m, nil
	case key.Matches(msg, m.keymap.PageDown):
		m.list.MoveBy(m.list.PageSize())
		return m, m.nearEnd()
	case key.Matches(msg, m.keymap.Home):
		m.list.Top()
		return m, nil
	case key.Matches(msg, m.keymap.End):
		m.list.Bottom()
		return m, m.nearEnd()

	case key.Matches(msg, m.keymap.Refresh):
		return m, tea.Batch(m.refresh(), m.spinner.Tick)

	case key.Matches(msg, m.keymap.Sort):
		vc := m.vc
		vc.Sort = vc.Sort.Toggle()
		return m.changeContext(vc)

	case key.Matches(msg, m.keymap.Currency):
		vc := m.vc
		vc.Currency = nextCurrency(m.config.Currencies, vc.Currency)
		return m.changeContext(vc)

	case key.Matches(msg, m.keymap.Month):
		m.state = StateMonthPrompt
		m.monthInput.SetValue("")
		if m.vc.Month != nil {
			m.monthInput.SetValue(m.vc.Month.String())
		}
		return m, m.monthInput.Focus()

	case key.Matches(msg, m.keymap.Scope):
		if len(m.scopes) < 2 {
			return m, m.showToast("Nobody is sharing payments with you", components.ToastInfo)
		}
		vc := m.vc
		vc.Scope = m.nextScope()
		return m.changeContext(vc)

	case key.Matches(msg, m.keymap.Delete):
		if !m.vc.Scope.IsSelf() {
			return m, m.showToast("Only your own payments can be deleted", components.ToastInfo)
		}
		selected := m.list.Selected()
		if selected == nil {
			return m, nil
		}
		p := *selected
		m.pendingDelete = &p
		m.state = StateConfirmDelete
		return m, nil
	}

	return m, nil
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		m.state = StateList
		return m, m.deletePayment(id)
	case key.Matches(msg, m.keymap.Cancel), key.Matches(msg, m.keymap.Quit):
		m.pendingDelete = nil
		m.state = StateList
	}
	return m, nil
}

func (m Model) handleMonthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.monthInput.Blur()
		m.state = StateList
		return m, nil

	case tea.KeyEnter:
		m.monthInput.Blur()
		m.state = StateList

		vc := m.vc
		value := strings.TrimSpace(m.monthInput.Value())
		if value == "" {
			vc.Month = nil
			return m.changeContext(vc)
		}
		month, err := model.ParseMonth(value)
		if err != nil {
			return m, m.showToast(err.Error(), components.ToastError)
		}
		vc.Month = &month
		return m.changeContext(vc)
	}

	var cmd tea.Cmd
	m.monthInput, cmd = m.monthInput.Update(msg)
	return m, cmd
}

// changeContext switches to vc and reloads from the first page. Nothing from
// the previous context stays on screen.
func (m Model) changeContext(vc model.ViewContext) (tea.Model, tea.Cmd) {
	if vc.Equal(m.vc) {
		return m, nil
	}
	m.vc = vc
	m.exhausted = false
	m.list.Reset()
	return m, tea.Batch(m.loadFirstPage(vc), m.spinner.Tick)
}

func (m *Model) refreshList() {
	m.list.SetBuckets(m.engine.View(m.config.HideEmptyDays))
}

func (m *Model) setDelegates(emails []string) {
	scopes := []model.Scope{model.SelfScope}
	for _, email := range emails {
		if strings.TrimSpace(email) == "" {
			continue
		}
		scopes = append(scopes, model.DelegateScope(email))
	}
	m.scopes = scopes
}

func (m Model) nextScope() model.Scope {
	for i, s := range m.scopes {
		if s == m.vc.Scope {
			return m.scopes[(i+1)%len(m.scopes)]
		}
	}
	return model.SelfScope
}

// nextCurrency cycles all → each currency → all.
func nextCurrency(currencies []model.Currency, current model.Currency) model.Currency {
	if current == "" {
		if len(currencies) == 0 {
			return ""
		}
		return currencies[0]
	}
	for i, c := range currencies {
		if c == current && i+1 < len(currencies) {
			return currencies[i+1]
		}
	}
	return ""
}

func (m *Model) showToast(message string, kind components.ToastKind) tea.Cmd {
	seq := m.toast.Show(message, kind)
	return m.expireToast(seq)
}

// showError surfaces err. Authentication failures end the session, since
// nothing works until the user logs in again.
func (m *Model) showError(err error, summary string) tea.Cmd {
	m.lastError = err
	if errors.Is(err, common.ErrUnauthenticated) {
		m.unauthenticated = true
		m.quitting = true
		return tea.Quit
	}

	message := summary
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		message = fmt.Sprintf("%s: %s", summary, userErr.UserMessage)
	}
	return m.showToast(message, components.ToastError)
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	// Header (2), status and key hints (2)
	m.list.Resize(m.width, m.height-4)
	m.help.Width = m.width
	m.monthInput.Width = 10
}

// Err is the error that ended the session, if any.
func (m Model) Err() error {
	if m.unauthenticated {
		return m.lastError
	}
	return nil
}
