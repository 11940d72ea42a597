package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
)

// Load returns the saved credential pair, or common.ErrNoSession.
func (s *SQLiteStorage) Load(ctx context.Context) (*model.TokenPair, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var tokens model.TokenPair
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token FROM credentials WHERE id = 1`,
	).Scan(&tokens.AccessToken, &tokens.RefreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return &tokens, nil
}

// Save replaces the saved credential pair.
func (s *SQLiteStorage) Save(ctx context.Context, tokens model.TokenPair) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTokens(tokens); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO credentials (id, access_token, refresh_token, saved_at)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				access_token = excluded.access_token,
				refresh_token = excluded.refresh_token,
				saved_at = excluded.saved_at
		`, tokens.AccessToken, tokens.RefreshToken, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}
		return recordEvent(ctx, tx, "saved")
	})
}

// Clear deletes the saved credential pair. Clearing when nothing is saved is
// not an error.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE id = 1`)
		if err != nil {
			return fmt.Errorf("failed to clear credentials: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return nil
		}
		return recordEvent(ctx, tx, "cleared")
	})
}

// LastSaved returns when credentials were last saved; zero if never.
func (s *SQLiteStorage) LastSaved(ctx context.Context) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}

	var savedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT occurred_at FROM session_events WHERE event = 'saved' ORDER BY id DESC LIMIT 1`,
	).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query session events: %w", err)
	}
	return savedAt, nil
}

func (s *SQLiteStorage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func recordEvent(ctx context.Context, tx *sql.Tx, event string) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO session_events (event) VALUES (?)`, event); err != nil {
		return fmt.Errorf("failed to record session event: %w", err)
	}
	return nil
}
