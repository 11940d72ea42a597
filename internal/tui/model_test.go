package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
	"github.com/Veraticus/spend/internal/paging"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves payments per scope and records calls.
type fakeBackend struct {
	fetchErr  error
	deleteErr error
	payments  map[model.Scope][]model.Payment
	scopes    []model.Scope
	deleted   []string
	delegates []string
	mu        sync.Mutex
}

func (f *fakeBackend) FetchPage(_ context.Context, scope model.Scope, page, size int) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scopes = append(f.scopes, scope)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	all := f.payments[scope]
	start := min((page-1)*size, len(all))
	end := min(start+size, len(all))
	return append([]model.Payment(nil), all[start:end]...), nil
}

func (f *fakeBackend) DeletePayment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) SharedToMe(context.Context) ([]string, error) {
	return f.delegates, nil
}

func (f *fakeBackend) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scopes)
}

func makePayments(prefix string, count int, currency model.Currency) []model.Payment {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	payments := make([]model.Payment, count)
	for i := range payments {
		payments[i] = model.Payment{
			ID:        fmt.Sprintf("%s-%d", prefix, i),
			Amount:    decimal.NewFromInt(10),
			Currency:  currency,
			PayedFrom: "Wallet",
			PayedTo:   fmt.Sprintf("%s shop %d", prefix, i),
			Date:      base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return payments
}

func newTestModel(t *testing.T, backend *fakeBackend, opts ...Option) Model {
	t.Helper()

	engine := paging.New(backend,
		paging.WithDeleter(backend),
		paging.WithLocation(time.UTC))

	cfg := defaultConfig()
	cfg.ToastDuration = time.Millisecond
	cfg.Delegates = backend
	for _, opt := range opts {
		opt(&cfg)
	}

	m := newModel(engine, cfg)
	return drive(t, m, m.Init())
}

// drive runs cmd and every command it leads to, feeding the resulting
// application messages back into the model. Spinner frames and toast
// expiry are dropped so the toast stays visible for assertions.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case pageLoadedMsg, deleteDoneMsg, delegatesLoadedMsg:
			updated, follow := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, follow)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys string) Model {
	t.Helper()

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "end":
		msg = tea.KeyMsg{Type: tea.KeyEnd}
	}

	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if m.state == StateMonthPrompt {
		// The prompt's cursor blink would block; nothing else is pending.
		return m
	}
	return drive(t, m, cmd)
}

func TestModel_InitLoadsFirstPage(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 25, model.CurrencyINR),
	}}

	m := newTestModel(t, backend)

	assert.True(t, m.ready)
	assert.False(t, m.exhausted)
	assert.Equal(t, 1, backend.fetches())

	_, total := m.list.Position()
	assert.Equal(t, 20, total)

	view := m.View()
	assert.Contains(t, view, "My Payments")
	assert.Contains(t, view, "Sort by Date ↓")
	assert.Contains(t, view, "All currencies")
	assert.Contains(t, view, "March 10, 2024")
	assert.Contains(t, view, "Wallet → own shop 0")
}

func TestModel_ScrollingToEndLoadsNextPage(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 25, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	m = press(t, m, "end")

	assert.Equal(t, 2, backend.fetches())
	assert.True(t, m.exhausted)
	_, total := m.list.Position()
	assert.Equal(t, 25, total)
	assert.Contains(t, m.View(), "End of list")
}

func TestModel_FilteredListKeepsLoading(t *testing.T) {
	payments := append(
		makePayments("inr", 20, model.CurrencyINR),
		makePayments("usd", 3, model.CurrencyUSD)...)
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: payments,
	}}

	vc := model.DefaultViewContext()
	vc.Currency = model.CurrencyUSD
	m := newTestModel(t, backend, WithViewContext(vc))

	assert.Equal(t, 2, backend.fetches())
	assert.True(t, m.exhausted)
	_, total := m.list.Position()
	assert.Equal(t, 3, total)
}

func TestModel_EmptyList(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)

	assert.True(t, m.exhausted)
	assert.Contains(t, m.View(), "No payments found")
}

func TestModel_SortToggleReloads(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 15, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	m = press(t, m, "s")

	assert.Equal(t, model.SortAsc, m.vc.Sort)
	assert.Equal(t, model.SortAsc, m.engine.Context().Sort)
	assert.Equal(t, 2, backend.fetches())
	assert.Contains(t, m.View(), "Sort by Date ↑")
	require.NotNil(t, m.list.Selected())
	// The March 9 bucket now comes first.
	assert.Equal(t, "own-13", m.list.Selected().ID)
}

func TestModel_ContextChangesAppliedOutOfOrder(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 15, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	sortKey := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}
	updated, toAsc := m.Update(sortKey)
	m = updated.(Model)
	updated, toDesc := m.Update(sortKey)
	m = updated.(Model)
	require.Equal(t, model.SortDesc, m.vc.Sort)

	// The later request reaches the engine first.
	m = drive(t, m, toDesc)
	m = drive(t, m, toAsc)

	assert.Equal(t, model.SortDesc, m.engine.Context().Sort)
	assert.Contains(t, m.View(), "Sort by Date ↓")
	require.NotNil(t, m.list.Selected())
	assert.Equal(t, "own-0", m.list.Selected().ID)
}

func TestModel_ResultForAbandonedContextIgnored(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 5, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	old := m.vc
	old.Currency = model.CurrencyUSD
	updated, cmd := m.Update(pageLoadedMsg{vc: old, err: errors.New("late failure")})

	assert.Nil(t, cmd)
	assert.Empty(t, updated.(Model).toast.Message())
}

func TestModel_RefreshReloadsContextOnScreen(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 5, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	// A load for another context lands after the model moved on.
	other := m.vc
	other.Sort = model.SortAsc
	_, err := m.engine.LoadFirstPage(context.Background(), other)
	require.NoError(t, err)

	m = press(t, m, "r")

	assert.Equal(t, model.SortDesc, m.engine.Context().Sort)
	require.NotNil(t, m.list.Selected())
	assert.Equal(t, "own-0", m.list.Selected().ID)
}

func TestModel_CurrencyFilterCycles(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: append(
			makePayments("inr", 3, model.CurrencyINR),
			makePayments("usd", 2, model.CurrencyUSD)...),
	}}
	m := newTestModel(t, backend, func(c *Config) {
		c.Currencies = []model.Currency{model.CurrencyINR, model.CurrencyUSD}
	})

	m = press(t, m, "c")
	assert.Equal(t, model.CurrencyINR, m.vc.Currency)
	_, total := m.list.Position()
	assert.Equal(t, 3, total)

	m = press(t, m, "c")
	assert.Equal(t, model.CurrencyUSD, m.vc.Currency)
	_, total = m.list.Position()
	assert.Equal(t, 2, total)

	m = press(t, m, "c")
	assert.Equal(t, model.Currency(""), m.vc.Currency)
	_, total = m.list.Position()
	assert.Equal(t, 5, total)
}

func TestNextCurrency(t *testing.T) {
	currencies := []model.Currency{model.CurrencyINR, model.CurrencyUSD}

	tests := []struct {
		name       string
		current    model.Currency
		want       model.Currency
		currencies []model.Currency
	}{
		{name: "all to first", current: "", want: model.CurrencyINR, currencies: currencies},
		{name: "first to second", current: model.CurrencyINR, want: model.CurrencyUSD, currencies: currencies},
		{name: "last to all", current: model.CurrencyUSD, want: "", currencies: currencies},
		{name: "unknown to all", current: model.CurrencyGBP, want: "", currencies: currencies},
		{name: "no currencies", current: "", want: "", currencies: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextCurrency(tt.currencies, tt.current))
		})
	}
}

func TestModel_MonthPrompt(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 5, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	t.Run("invalid month shows error", func(t *testing.T) {
		m := press(t, m, "m")
		require.Equal(t, StateMonthPrompt, m.state)
		m.monthInput.SetValue("2024-13")

		m = press(t, m, "enter")

		assert.Equal(t, StateList, m.state)
		assert.Nil(t, m.vc.Month)
		assert.Contains(t, m.toast.Message(), "invalid month")
	})

	t.Run("valid month filters", func(t *testing.T) {
		m := press(t, m, "m")
		m.monthInput.SetValue("2024-03")

		m = press(t, m, "enter")

		require.NotNil(t, m.vc.Month)
		assert.Equal(t, "2024-03", m.vc.Month.String())
		assert.Contains(t, m.View(), "March 2024")

		// Clearing the input removes the filter.
		m = press(t, m, "m")
		assert.Equal(t, "2024-03", m.monthInput.Value())
		m.monthInput.SetValue("")
		m = press(t, m, "enter")
		assert.Nil(t, m.vc.Month)
	})

	t.Run("escape cancels", func(t *testing.T) {
		m := press(t, m, "m")
		m.monthInput.SetValue("2024-03")

		m = press(t, m, "esc")

		assert.Equal(t, StateList, m.state)
		assert.Nil(t, m.vc.Month)
	})
}

func TestModel_ScopeWithoutDelegates(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 5, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	m = press(t, m, "tab")

	assert.True(t, m.vc.Scope.IsSelf())
	assert.Equal(t, "Nobody is sharing payments with you", m.toast.Message())
}

func TestModel_ScopeCyclesThroughDelegates(t *testing.T) {
	alice := model.DelegateScope("alice@example.com")
	backend := &fakeBackend{
		delegates: []string{"alice@example.com"},
		payments: map[model.Scope][]model.Payment{
			model.SelfScope: makePayments("own", 5, model.CurrencyINR),
			alice:           makePayments("alice", 2, model.CurrencyEUR),
		},
	}
	m := newTestModel(t, backend)
	require.Len(t, m.scopes, 2)

	m = press(t, m, "tab")

	assert.Equal(t, alice, m.vc.Scope)
	assert.Equal(t, alice, backend.scopes[len(backend.scopes)-1])
	assert.Contains(t, m.View(), "alice@example.com's Payments")
	require.NotNil(t, m.list.Selected())
	assert.Equal(t, "alice-0", m.list.Selected().ID)

	m = press(t, m, "d")
	assert.Equal(t, StateList, m.state)
	assert.Equal(t, "Only your own payments can be deleted", m.toast.Message())

	m = press(t, m, "tab")
	assert.True(t, m.vc.Scope.IsSelf())
	assert.Equal(t, "own-0", m.list.Selected().ID)
}

func TestModel_DeleteConfirmed(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 5, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)
	m = press(t, m, "j")

	m = press(t, m, "d")
	require.Equal(t, StateConfirmDelete, m.state)
	assert.Contains(t, m.View(), "Delete ₹10.00 Wallet → own shop 1? (y/n)")

	m = press(t, m, "y")

	assert.Equal(t, StateList, m.state)
	assert.Equal(t, []string{"own-1"}, backend.deleted)
	assert.Equal(t, "Payment deleted", m.toast.Message())
	_, total := m.list.Position()
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, backend.fetches())
}

func TestModel_DeleteCancelled(t *testing.T) {
	backend := &fakeBackend{payments: map[model.Scope][]model.Payment{
		model.SelfScope: makePayments("own", 5, model.CurrencyINR),
	}}
	m := newTestModel(t, backend)

	m = press(t, m, "d")
	m = press(t, m, "n")

	assert.Equal(t, StateList, m.state)
	assert.Nil(t, m.pendingDelete)
	assert.Empty(t, backend.deleted)
}

func TestModel_DeleteFailureKeepsPayment(t *testing.T) {
	backend := &fakeBackend{
		deleteErr: errors.New("boom"),
		payments: map[model.Scope][]model.Payment{
			model.SelfScope: makePayments("own", 5, model.CurrencyINR),
		},
	}
	m := newTestModel(t, backend)

	m = press(t, m, "d")
	m = press(t, m, "y")

	assert.Equal(t, "Failed to delete payment", m.toast.Message())
	_, total := m.list.Position()
	assert.Equal(t, 5, total)
}

func TestModel_FetchErrorShowsToast(t *testing.T) {
	backend := &fakeBackend{fetchErr: errors.New("connection refused")}
	m := newTestModel(t, backend)

	assert.True(t, m.ready)
	assert.False(t, m.quitting)
	assert.Equal(t, "Failed to fetch payments", m.toast.Message())
	assert.NoError(t, m.Err())
}

func TestModel_UnauthenticatedQuits(t *testing.T) {
	backend := &fakeBackend{fetchErr: fmt.Errorf("%w: token expired", common.ErrUnauthenticated)}
	m := newTestModel(t, backend)

	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
	assert.ErrorIs(t, m.Err(), common.ErrUnauthenticated)
}

func TestModel_StaleResultIgnored(t *testing.T) {
	backend := &fakeBackend{}
	engine := paging.New(backend)
	m := newModel(engine, defaultConfig())

	updated, cmd := m.Update(pageLoadedMsg{result: paging.Result{Stale: true}})

	assert.Nil(t, cmd)
	assert.False(t, updated.(Model).ready)
}

func TestModel_HelpToggle(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)

	m = press(t, m, "?")
	assert.Equal(t, StateHelp, m.state)
	assert.Contains(t, m.View(), "spend - Help")

	m = press(t, m, "x")
	assert.Equal(t, StateList, m.state)
}

func TestModel_WindowResize(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 36, m.list.PageSize())
}
