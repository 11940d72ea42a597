package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/spend/internal/paging"
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the payment browser on engine and blocks until the user quits.
// It returns an error wrapping common.ErrUnauthenticated when the session
// ended because the server rejected the credentials.
func Run(ctx context.Context, engine *paging.Engine, opts ...Option) error {
	if engine == nil {
		return fmt.Errorf("paging engine is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	program := tea.NewProgram(
		newModel(engine, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
