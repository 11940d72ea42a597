// Package model defines the core domain types used throughout the application.
package model

// User is the identity decoded from the access token. It is for display only;
// the server stays authoritative for every authorized action.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

// TokenPair is the bearer credential pair issued by the auth endpoints.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginCredentials is the login request body.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterCredentials is the registration request body.
type RegisterCredentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Defaults are the caller's reusable payer/payee labels.
type Defaults struct {
	Email     string   `json:"email"`
	PayedTo   []string `json:"payedTo"`
	PayedFrom []string `json:"payedFrom"`
}

// DefaultKind selects one of the two default lists.
type DefaultKind string

// Default list kinds, named after their API path segment.
const (
	DefaultPayedTo   DefaultKind = "payedTo"
	DefaultPayedFrom DefaultKind = "payedFrom"
)

// Summary is the generated spending summary, in markdown.
type Summary struct {
	Response string `json:"response"`
}
