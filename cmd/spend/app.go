package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/spend/internal/api"
	"github.com/Veraticus/spend/internal/cli"
	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/config"
	"github.com/Veraticus/spend/internal/model"
	"github.com/Veraticus/spend/internal/paging"
	"github.com/Veraticus/spend/internal/session"
	"github.com/Veraticus/spend/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNotLoggedIn = common.NewUserError("Not logged in. Run: spend login", common.ErrUnauthenticated)

// app is what every command needs: the resolved config, the session and an
// authenticated API client. One is built per command invocation.
type app struct {
	out      io.Writer
	store    *session.Store
	client   *api.Client
	sqlite   *storage.SQLiteStorage
	prompter *cli.Prompter
	cfg      config.Config
}

// newApp resolves config, opens the session backend, restores any saved
// session and wires the API clients to it.
func newApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg := config.FromViper(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, sqlite, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []api.Option{api.WithTimeout(cfg.APITimeout)}

	// Auth endpoints are anonymous; everything else carries the session's
	// bearer credential.
	store := session.NewStore(backend, api.New(cfg.APIBaseURL, nil, opts...))
	if _, err := store.Restore(ctx); err != nil {
		if sqlite != nil {
			_ = sqlite.Close()
		}
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    store,
		client:   api.New(cfg.APIBaseURL, store.TokenSource(), opts...),
		sqlite:   sqlite,
		prompter: cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		out:      cmd.OutOrStdout(),
	}, nil
}

func openBackend(ctx context.Context, cfg config.Config) (session.Backend, *storage.SQLiteStorage, error) {
	path, err := cfg.ResolveSessionPath()
	if err != nil {
		return nil, nil, err
	}

	if cfg.SessionBackend != config.BackendSQLite {
		return session.NewFileBackend(path), nil, nil
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, store, nil
}

// Close releases the session database, if any.
func (a *app) Close() error {
	if a.sqlite != nil {
		return a.sqlite.Close()
	}
	return nil
}

// requireUser returns the signed-in user or a "log in" error.
func (a *app) requireUser() (*model.User, error) {
	user := a.store.CurrentUser()
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

// newEngine builds a paging engine over the authenticated client.
func (a *app) newEngine() *paging.Engine {
	return paging.New(a.client,
		paging.WithPageSize(a.cfg.PageSize),
		paging.WithNearEndThreshold(a.cfg.NearEndThreshold),
		paging.WithDeleter(a.client))
}

// explain turns an authentication failure into a "log in again" message.
func explain(err error) error {
	if err == nil {
		return nil
	}
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return err
	}
	if errors.Is(err, common.ErrUnauthenticated) {
		return common.NewUserError("Your session has expired or is invalid. Run: spend login", err)
	}
	return err
}

// withApp runs fn with a freshly built app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return explain(fn(cmd.Context(), a))
}

// withUser is withApp for commands that need a signed-in user.
func withUser(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.requireUser(); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}

func (a *app) success(format string, args ...any) error {
	_, err := fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf(format, args...)))
	return err
}
