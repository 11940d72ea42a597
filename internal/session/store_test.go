package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spend/internal/api"
	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
	"github.com/Veraticus/spend/internal/storage"
	"github.com/Veraticus/spend/internal/testutil/fakeapi"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, creds model.LoginCredentials) (*model.TokenPair, error) {
	args := m.Called(ctx, creds)
	tokens, _ := args.Get(0).(*model.TokenPair)
	return tokens, args.Error(1)
}

func (m *mockAuth) Register(ctx context.Context, creds model.RegisterCredentials) (*model.User, error) {
	args := m.Called(ctx, creds)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, tokens model.TokenPair) error {
	return m.Called(ctx, tokens).Error(0)
}

func unsignedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return token
}

func newFileStore(t *testing.T, auth AuthAPI) (*Store, *FileBackend) {
	t.Helper()
	backend := NewFileBackend(filepath.Join(t.TempDir(), "spend", "session.json"))
	return NewStore(backend, auth), backend
}

func TestStore_LoginPersistsAndRestores(t *testing.T) {
	srv := fakeapi.New(t)
	srv.AddUser("alice", "alice@example.com", "secret")
	auth := api.New(srv.URL, nil)
	ctx := context.Background()

	store, backend := newFileStore(t, auth)

	user, err := store.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "user", user.Role)
	require.NotNil(t, store.Tokens())
	assert.False(t, store.Expiry().IsZero())

	info, err := os.Stat(backend.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	restored := NewStore(backend, auth)
	user, err = restored.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, store.Tokens(), restored.Tokens())
}

func TestStore_LoginFailure(t *testing.T) {
	srv := fakeapi.New(t)
	srv.AddUser("alice", "alice@example.com", "secret")
	store, backend := newFileStore(t, api.New(srv.URL, nil))

	_, err := store.Login(context.Background(), "alice@example.com", "nope")
	require.Error(t, err)
	assert.Equal(t, "Login failed", common.UserMessage(err))
	assert.Nil(t, store.CurrentUser())

	_, err = backend.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestStore_RegisterThenLogsIn(t *testing.T) {
	srv := fakeapi.New(t)
	store, _ := newFileStore(t, api.New(srv.URL, nil))

	user, err := store.Register(context.Background(), model.RegisterCredentials{
		Username: "dana",
		Email:    "dana@example.com",
		Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana", user.Username)
	assert.NotNil(t, store.Tokens())
	assert.Equal(t, 1, srv.Hits(http.MethodPost, "/api/auth/login"))
}

func TestStore_RestoreWithoutSession(t *testing.T) {
	store, _ := newFileStore(t, &mockAuth{})

	user, err := store.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, store.Tokens())
}

func TestStore_RestoreDiscardsUndecodableToken(t *testing.T) {
	store, backend := newFileStore(t, &mockAuth{})
	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, model.TokenPair{AccessToken: "not-a-jwt", RefreshToken: "r"}))

	user, err := store.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = backend.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestStore_LogoutClearsEvenWhenServerFails(t *testing.T) {
	auth := &mockAuth{}
	store, backend := newFileStore(t, auth)
	ctx := context.Background()

	access := unsignedToken(t, jwt.MapClaims{"sub": "u1", "email": "e@example.com"})
	pair := model.TokenPair{AccessToken: access, RefreshToken: "refresh"}
	auth.On("Login", mock.Anything, model.LoginCredentials{Email: "e@example.com", Password: "pw"}).Return(&pair, nil)
	auth.On("Logout", mock.Anything, pair).Return(errors.New("server down"))

	_, err := store.Login(ctx, "e@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, store.Logout(ctx))
	assert.Nil(t, store.CurrentUser())
	assert.Nil(t, store.Tokens())

	_, err = backend.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNoSession)
	auth.AssertExpectations(t)
}

func TestStore_LogoutWhenSignedOut(t *testing.T) {
	auth := &mockAuth{}
	store, _ := newFileStore(t, auth)

	require.NoError(t, store.Logout(context.Background()))
	auth.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func TestStore_TokenSource(t *testing.T) {
	auth := &mockAuth{}
	store, _ := newFileStore(t, auth)
	ctx := context.Background()

	_, err := store.TokenSource().Token()
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	access := unsignedToken(t, jwt.MapClaims{"sub": "u1", "email": "e@example.com", "exp": expiry.Unix()})
	auth.On("Login", mock.Anything, mock.Anything).Return(&model.TokenPair{AccessToken: access, RefreshToken: "r"}, nil)

	_, err = store.Login(ctx, "e@example.com", "pw")
	require.NoError(t, err)

	store.now = func() time.Time { return expiry.Add(-time.Minute) }
	tok, err := store.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, access, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.Equal(expiry))

	store.now = func() time.Time { return expiry }
	_, err = store.TokenSource().Token()
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestStore_AuthenticatedClientEndToEnd(t *testing.T) {
	srv := fakeapi.New(t)
	srv.AddUser("alice", "alice@example.com", "secret")
	srv.SetSummary("all good")
	ctx := context.Background()

	store, _ := newFileStore(t, api.New(srv.URL, nil))
	client := api.New(srv.URL, store.TokenSource())

	_, err := client.Summary(ctx)
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = store.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	summary, err := client.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "all good", summary.Response)

	require.NoError(t, store.Logout(ctx))
	_, err = client.Summary(ctx)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestStore_SQLiteBackend(t *testing.T) {
	srv := fakeapi.New(t)
	srv.AddUser("alice", "alice@example.com", "secret")
	ctx := context.Background()

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "spend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	store := NewStore(db, api.New(srv.URL, nil))
	_, err = store.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	user, err := NewStore(db, api.New(srv.URL, nil)).Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, store.Logout(ctx))
	_, err = db.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNoSession)
}
