package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func TestNewSQLiteStorage(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{
			name:    "valid path",
			dbPath:  filepath.Join(t.TempDir(), "nested", "spend.db"),
			wantErr: false,
		},
		{
			name:    "in-memory database",
			dbPath:  ":memory:",
			wantErr: false,
		},
		{
			name:    "empty path",
			dbPath:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSQLiteStorage(tt.dbPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSQLiteStorage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if store != nil {
				_ = store.Close()
			}
		})
	}
}

func TestSQLiteStorage_FilePermissions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Failed to stat database: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("database permissions = %o, want 600", perm)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}

	var version int
	if err := store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestCredentials_LoadEmpty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.Load(context.Background())
	if !errors.Is(err, common.ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession", err)
	}
}

func TestCredentials_SaveLoadClear(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := model.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	second := model.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *got != second {
		t.Errorf("Load() = %+v, want %+v", *got, second)
	}

	var rows int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM credentials").Scan(&rows); err != nil {
		t.Fatalf("Failed to count credentials: %v", err)
	}
	if rows != 1 {
		t.Errorf("credentials rows = %d, want 1", rows)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, common.ErrNoSession) {
		t.Errorf("Load() after Clear() error = %v, want ErrNoSession", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clear() on empty store failed: %v", err)
	}
}

func TestCredentials_SaveRejectsEmptyAccessToken(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.Save(context.Background(), model.TokenPair{RefreshToken: "r"})
	if !errors.Is(err, ErrEmptyString) {
		t.Errorf("Save() error = %v, want ErrEmptyString", err)
	}
}

func TestCredentials_LastSaved(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	saved, err := store.LastSaved(ctx)
	if err != nil {
		t.Fatalf("LastSaved() failed: %v", err)
	}
	if !saved.IsZero() {
		t.Errorf("LastSaved() = %v, want zero", saved)
	}

	if err := store.Save(ctx, model.TokenPair{AccessToken: "a"}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	saved, err = store.LastSaved(ctx)
	if err != nil {
		t.Fatalf("LastSaved() failed: %v", err)
	}
	if saved.IsZero() {
		t.Error("LastSaved() is zero after Save()")
	}
}

func TestCredentials_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // testing nil context handling
	if _, err := store.Load(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("Load(nil) error = %v, want ErrNilContext", err)
	}
}
