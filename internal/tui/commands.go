package tui

import (
	"context"
	"time"

	"github.com/Veraticus/spend/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// loadFirstPage (re)loads the list for vc.
func (m Model) loadFirstPage(vc model.ViewContext) tea.Cmd {
	engine, timeout := m.engine, m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := engine.LoadFirstPage(ctx, vc)
		return pageLoadedMsg{vc: vc, result: result, err: err}
	}
}

// refresh reloads the first page of the context on screen, as captured when
// the key was pressed.
func (m Model) refresh() tea.Cmd {
	return m.loadFirstPage(m.vc)
}

// nearEnd reports the highlight position to the engine, which loads the next
// page once it is close enough to the end.
func (m Model) nearEnd() tea.Cmd {
	engine, timeout, vc := m.engine, m.config.RequestTimeout, m.vc
	index, total := m.list.Position()
	return func() tea.Msg {
		// A first page for vc is still pending; it continues the fill itself.
		if !engine.Context().Equal(vc) {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := engine.OnNearEnd(ctx, index, total)
		if err == nil && result.Skipped {
			return nil
		}
		return pageLoadedMsg{vc: vc, result: result, err: err}
	}
}

// deletePayment deletes id on the server, then from the list.
func (m Model) deletePayment(id string) tea.Cmd {
	engine, timeout := m.engine, m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return deleteDoneMsg{id: id, err: engine.Delete(ctx, id)}
	}
}

// loadDelegates fetches the users sharing their payments with the caller.
func (m Model) loadDelegates() tea.Cmd {
	if m.config.Delegates == nil {
		return nil
	}
	delegates, timeout := m.config.Delegates, m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		emails, err := delegates.SharedToMe(ctx)
		return delegatesLoadedMsg{emails: emails, err: err}
	}
}

// expireToast hides toast seq after the configured duration.
func (m Model) expireToast(seq int) tea.Cmd {
	return tea.Tick(m.config.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}
