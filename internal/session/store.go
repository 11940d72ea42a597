package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
	"golang.org/x/oauth2"
)

// AuthAPI is the subset of the API client the store needs. These endpoints do
// not carry a bearer credential.
type AuthAPI interface {
	Login(ctx context.Context, creds model.LoginCredentials) (*model.TokenPair, error)
	Register(ctx context.Context, creds model.RegisterCredentials) (*model.User, error)
	Logout(ctx context.Context, tokens model.TokenPair) error
}

// Store is the single source of truth for who is signed in. Create one per
// process and pass it to whatever needs the credential.
type Store struct {
	backend Backend
	auth    AuthAPI
	user    *model.User
	tokens  *model.TokenPair
	expiry  time.Time
	now     func() time.Time
	mu      sync.RWMutex
}

// NewStore creates an empty store. Call Restore to pick up a saved session.
func NewStore(backend Backend, auth AuthAPI) *Store {
	return &Store{
		backend: backend,
		auth:    auth,
		now:     time.Now,
	}
}

// Restore loads the saved credential pair. A pair whose access token cannot
// be decoded is discarded, leaving the store signed out. It returns the user,
// or nil when nobody is signed in.
func (s *Store) Restore(ctx context.Context) (*model.User, error) {
	tokens, err := s.backend.Load(ctx)
	if errors.Is(err, common.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	claims, err := DecodeClaims(tokens.AccessToken)
	if err != nil {
		slog.Warn("Discarding unreadable saved session", "error", err)
		if clearErr := s.backend.Clear(ctx); clearErr != nil {
			slog.Warn("Failed to clear unreadable session", "error", clearErr)
		}
		return nil, nil
	}

	s.set(tokens, claims)
	return s.CurrentUser(), nil
}

// Login exchanges credentials for a pair, saves it and signs the user in.
func (s *Store) Login(ctx context.Context, email, password string) (*model.User, error) {
	tokens, err := s.auth.Login(ctx, model.LoginCredentials{Email: email, Password: password})
	if err != nil {
		return nil, common.NewUserError("Login failed", err)
	}

	claims, err := DecodeClaims(tokens.AccessToken)
	if err != nil {
		return nil, common.NewUserError("Login failed: unreadable access token", err)
	}

	if err := s.backend.Save(ctx, *tokens); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.set(tokens, claims)
	user := s.CurrentUser()
	slog.Info("Signed in", "email", user.Email)
	return user, nil
}

// Register creates an account and then signs in with the same credentials.
func (s *Store) Register(ctx context.Context, creds model.RegisterCredentials) (*model.User, error) {
	if _, err := s.auth.Register(ctx, creds); err != nil {
		return nil, common.NewUserError("Registration failed", err)
	}
	return s.Login(ctx, creds.Email, creds.Password)
}

// Logout forgets the session locally whatever happens, then tells the server.
// Only a failure to clear the saved pair is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	tokens := s.tokens
	s.user = nil
	s.tokens = nil
	s.expiry = time.Time{}
	s.mu.Unlock()

	clearErr := s.backend.Clear(ctx)

	if tokens != nil && s.auth != nil {
		if err := s.auth.Logout(ctx, *tokens); err != nil {
			slog.Warn("Server logout failed", "error", err)
		}
	}

	if clearErr != nil {
		return fmt.Errorf("failed to clear session: %w", clearErr)
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil.
func (s *Store) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Tokens returns the current pair, or nil.
func (s *Store) Tokens() *model.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil
	}
	t := *s.tokens
	return &t
}

// Expiry returns when the access token expires; zero when unknown.
func (s *Store) Expiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiry
}

// TokenSource exposes the access token to an oauth2.Transport. It fails with
// common.ErrUnauthenticated while signed out or once the token has expired.
func (s *Store) TokenSource() oauth2.TokenSource {
	return tokenSource{store: s}
}

func (s *Store) set(tokens *model.TokenPair, claims *Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *tokens
	s.tokens = &t
	s.user = claims.User()
	s.expiry = time.Time{}
	if claims.ExpiresAt != nil {
		s.expiry = claims.ExpiresAt.Time
	}
}

type tokenSource struct {
	store *Store
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	s := ts.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tokens == nil {
		return nil, common.ErrUnauthenticated
	}
	if !s.expiry.IsZero() && !s.now().Before(s.expiry) {
		return nil, fmt.Errorf("%w: access token expired at %s", common.ErrUnauthenticated, s.expiry.Format(time.RFC3339))
	}

	return &oauth2.Token{
		AccessToken:  s.tokens.AccessToken,
		RefreshToken: s.tokens.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.expiry,
	}, nil
}
