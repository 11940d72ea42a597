// Package fakeapi is an in-process fake of the expense-tracking API for tests.
// It keeps users, payments, defaults and shares in memory and issues real
// HS256-signed access tokens, so clients exercise the same decode paths they
// use against the real server.
package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/spend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DefaultPageSize is used when a list request carries no size.
const DefaultPageSize = 20

var signingKey = []byte("fakeapi-signing-key")

type account struct {
	id       string
	username string
	email    string
	password string
	role     string
}

type failure struct {
	status int
	count  int
}

// Server is a running fake API.
type Server struct {
	*httptest.Server

	accounts  map[string]*account
	payments  map[string][]model.Payment
	payedTo   map[string][]string
	payedFrom map[string][]string
	shares    map[string][]string
	failures  map[string]*failure
	hits      map[string]int
	headers   http.Header
	revoked   map[string]bool
	summary   string
	tokenTTL  time.Duration
	mu        sync.Mutex
}

// New starts a fake API that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accounts:  make(map[string]*account),
		payments:  make(map[string][]model.Payment),
		payedTo:   make(map[string][]string),
		payedFrom: make(map[string][]string),
		shares:    make(map[string][]string),
		failures:  make(map[string]*failure),
		hits:      make(map[string]int),
		revoked:   make(map[string]bool),
		tokenTTL:  time.Hour,
		summary:   "## Summary\n\nNo spending yet.",
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.track)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	auth.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/payment", s.handleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payment", s.handleCreatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payment", s.handleDeletePayment).Methods(http.MethodDelete)
	api.HandleFunc("/share/check", s.handleSharedPayments).Methods(http.MethodGet)
	api.HandleFunc("/share/to-me", s.handleSharedToMe).Methods(http.MethodGet)
	api.HandleFunc("/share/", s.handleSharedWith).Methods(http.MethodGet)
	api.HandleFunc("/share/", s.handleChangeShare).Methods(http.MethodPost, http.MethodDelete)
	api.HandleFunc("/defaults", s.handleDefaults).Methods(http.MethodGet)
	api.HandleFunc("/defaults/{kind}", s.handleDefaultList).Methods(http.MethodGet)
	api.HandleFunc("/defaults/{kind}", s.handleChangeDefault).Methods(http.MethodPost, http.MethodDelete)
	api.HandleFunc("/aiSummary", s.handleSummary).Methods(http.MethodGet)

	return r
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{
		id:       uuid.NewString(),
		username: username,
		email:    email,
		password: password,
		role:     "user",
	}
}

// SeedPayments appends payments to email's history in server order.
func (s *Server) SeedPayments(email string, payments ...model.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[email] = append(s.payments[email], payments...)
}

// Payments returns email's stored payments.
func (s *Server) Payments(email string) []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.payments[email])
}

// Share grants grantee access to owner's payments.
func (s *Server) Share(owner, grantee string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.shares[owner], grantee) {
		s.shares[owner] = append(s.shares[owner], grantee)
	}
}

// SetDefaults replaces email's default lists.
func (s *Server) SetDefaults(email string, payedTo, payedFrom []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payedTo[email] = slices.Clone(payedTo)
	s.payedFrom[email] = slices.Clone(payedFrom)
}

// SetSummary sets the summary text.
func (s *Server) SetSummary(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = text
}

// SetTokenTTL sets the lifetime of tokens issued from now on.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}

// FailNext makes the next count requests to method and path answer status.
func (s *Server) FailNext(method, path string, status, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = &failure{status: status, count: count}
}

// Hits returns how many requests reached method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// LastHeaders returns the headers of the most recent request.
func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers.Clone()
}

// IssueToken returns a signed access token for email.
func (s *Server) IssueToken(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		return "", fmt.Errorf("unknown account %q", email)
	}
	return s.signLocked(acct, "access")
}

func (s *Server) signLocked(acct *account, use string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      acct.id,
		"email":    acct.email,
		"username": acct.username,
		"role":     acct.role,
		"use":      use,
		"jti":      uuid.NewString(),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.hits[key]++
		s.headers = r.Header.Clone()
		f := s.failures[key]
		fail := f != nil && f.count > 0
		if fail {
			f.count--
		}
		s.mu.Unlock()

		if fail {
			writeError(w, f.status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type emailKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(h, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return signingKey, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		email, _ := claims["email"].(string)
		if !ok || email == "" {
			writeError(w, http.StatusUnauthorized, "invalid claims")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), emailKey{}, email)))
	})
}

func caller(r *http.Request) string {
	email, _ := r.Context().Value(emailKey{}).(string)
	return email
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.LoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[creds.Email]
	if !ok || acct.password != creds.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, err := s.signLocked(acct, "access")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	refresh, err := s.signLocked(acct, "refresh")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.TokenPair{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds model.RegisterCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[creds.Email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	role := creds.Role
	if role == "" {
		role = "user"
	}
	acct := &account{
		id:       uuid.NewString(),
		username: creds.Username,
		email:    creds.Email,
		password: creds.Password,
		role:     role,
	}
	s.accounts[creds.Email] = acct
	writeJSON(w, http.StatusCreated, model.User{ID: acct.id, Username: acct.username, Email: acct.email, Role: acct.role})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.revoked[body.RefreshToken] = true
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// Revoked reports whether a refresh token was logged out.
func (s *Server) Revoked(refreshToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[refreshToken]
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	records := paginate(s.payments[caller(r)], page, size)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSharedPayments(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("email")
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.shares[owner], caller(r)) {
		writeError(w, http.StatusNotFound, "no shared history for "+owner)
		return
	}
	writeJSON(w, http.StatusOK, paginate(s.payments[owner], page, size))
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount    json.Number `json:"amount"`
		Currency  string      `json:"currency"`
		PayedFrom string      `json:"payedFrom"`
		PayedTo   string      `json:"payedTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	amount, err := model.ParseAmount(body.Amount.String())
	if err != nil || body.Currency == "" {
		writeError(w, http.StatusBadRequest, "invalid payment")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := caller(r)
	p := model.Payment{
		ID:        uuid.NewString(),
		Amount:    amount,
		Currency:  model.Currency(body.Currency),
		Date:      time.Now().UTC(),
		PayedFrom: body.PayedFrom,
		PayedTo:   body.PayedTo,
	}
	if acct, ok := s.accounts[email]; ok {
		p.UserID = acct.id
	}
	s.payments[email] = append([]model.Payment{p}, s.payments[email]...)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("paymentId")

	s.mu.Lock()
	defer s.mu.Unlock()

	email := caller(r)
	records := s.payments[email]
	idx := slices.IndexFunc(records, func(p model.Payment) bool { return p.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	s.payments[email] = slices.Delete(slices.Clone(records), idx, idx+1)
	writeJSON(w, http.StatusOK, true)
}

func (s *Server) handleSharedWith(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.shares[caller(r)]))
}

func (s *Server) handleSharedToMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	me := caller(r)
	owners := []string{}
	for owner, grantees := range s.shares {
		if slices.Contains(grantees, me) {
			owners = append(owners, owner)
		}
	}
	slices.Sort(owners)
	writeJSON(w, http.StatusOK, owners)
}

func (s *Server) handleChangeShare(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	me := caller(r)
	if r.Method == http.MethodPost {
		if !slices.Contains(s.shares[me], email) {
			s.shares[me] = append(s.shares[me], email)
		}
	} else {
		s.shares[me] = slices.DeleteFunc(slices.Clone(s.shares[me]), func(e string) bool { return e == email })
	}
	writeJSON(w, http.StatusOK, nonNil(s.shares[me]))
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	me := caller(r)
	writeJSON(w, http.StatusOK, model.Defaults{
		Email:     me,
		PayedTo:   nonNil(s.payedTo[me]),
		PayedFrom: nonNil(s.payedFrom[me]),
	})
}

func (s *Server) defaultList(kind string) (map[string][]string, bool) {
	switch model.DefaultKind(kind) {
	case model.DefaultPayedTo:
		return s.payedTo, true
	case model.DefaultPayedFrom:
		return s.payedFrom, true
	default:
		return nil, false
	}
}

func (s *Server) handleDefaultList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, ok := s.defaultList(mux.Vars(r)["kind"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown defaults list")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(lists[caller(r)]))
}

func (s *Server) handleChangeDefault(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pay string `json:"pay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Pay == "" {
		writeError(w, http.StatusBadRequest, "pay is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lists, ok := s.defaultList(mux.Vars(r)["kind"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown defaults list")
		return
	}
	me := caller(r)
	if r.Method == http.MethodPost {
		if !slices.Contains(lists[me], body.Pay) {
			lists[me] = append(lists[me], body.Pay)
		}
	} else {
		lists[me] = slices.DeleteFunc(slices.Clone(lists[me]), func(v string) bool { return v == body.Pay })
	}
	writeJSON(w, http.StatusOK, nonNil(lists[me]))
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, model.Summary{Response: s.summary})
}

func pageParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "invalid page")
		return 0, 0, false
	}
	size := DefaultPageSize
	if raw := q.Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 1 {
			writeError(w, http.StatusBadRequest, "invalid size")
			return 0, 0, false
		}
	}
	return page, size, true
}

func paginate(records []model.Payment, page, size int) []model.Payment {
	start := (page - 1) * size
	if start >= len(records) {
		return []model.Payment{}
	}
	end := min(start+size, len(records))
	return slices.Clone(records[start:end])
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
