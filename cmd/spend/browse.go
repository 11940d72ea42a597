package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/tui"
	"github.com/Veraticus/spend/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// debugLogEnv names the file the browser logs to; unset means no logging.
const debugLogEnv = "SPEND_DEBUG_LOG"

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse payments interactively",
		Long: `Open an interactive, scrollable list of payments grouped by day.

More pages load as you scroll. Press ? inside the browser for keys.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}

	addViewFlags(cmd.Flags())

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	vc, err := viewContextFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	return withUser(cmd, func(ctx context.Context, a *app) error {
		theme, ok := themes.Lookup(a.cfg.Theme)
		if !ok {
			slog.Warn("Unknown theme, using default", "theme", a.cfg.Theme, "available", themes.Names())
			theme = themes.Default
		}

		// The alternate screen owns the terminal; logs go to a file or nowhere.
		restore := redirectLogging()
		defer restore()

		err := tui.Run(ctx, a.newEngine(),
			tui.WithTheme(theme),
			tui.WithDelegates(a.client),
			tui.WithViewContext(vc),
			tui.WithHideEmptyDays(a.cfg.HideEmptyDays),
			tui.WithRequestTimeout(a.cfg.APITimeout),
		)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func redirectLogging() func() {
	previous := slog.Default()

	path := os.Getenv(debugLogEnv)
	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() { slog.SetDefault(previous) }
	}

	f, err := tea.LogToFile(path, "spend")
	if err != nil {
		common.LogError(err, "Failed to open debug log", common.Fields{"path": path})
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() { slog.SetDefault(previous) }
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() {
		slog.SetDefault(previous)
		_ = f.Close()
	}
}
