// Package session holds the signed-in user and their credential pair, and
// persists the pair between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
)

// Backend persists one credential pair. Load returns common.ErrNoSession when
// nothing is stored.
type Backend interface {
	Load(ctx context.Context) (*model.TokenPair, error)
	Save(ctx context.Context, tokens model.TokenPair) error
	Clear(ctx context.Context) error
}

// FileBackend stores the credential pair as JSON, readable by the owner only.
type FileBackend struct {
	path string
}

type fileState struct {
	SavedAt      time.Time `json:"saved_at"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// NewFileBackend creates a backend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the session file location.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the stored pair.
func (b *FileBackend) Load(_ context.Context) (*model.TokenPair, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, common.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", b.path, err)
	}
	if state.AccessToken == "" {
		return nil, common.ErrNoSession
	}

	return &model.TokenPair{AccessToken: state.AccessToken, RefreshToken: state.RefreshToken}, nil
}

// Save replaces the stored pair. The file is written next to its final
// location and renamed into place.
func (b *FileBackend) Save(_ context.Context, tokens model.TokenPair) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(fileState{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		SavedAt:      time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear removes the stored pair. Clearing an empty backend is not an error.
func (b *FileBackend) Clear(_ context.Context) error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
