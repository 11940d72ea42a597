package session

import (
	"fmt"

	"github.com/Veraticus/spend/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token fields the client reads.
// The subject is read as whatever JSON type the server used; some servers
// issue numeric ids.
type Claims struct {
	Sub      any    `json:"sub,omitempty"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// DecodeClaims reads the claims of an access token without verifying its
// signature. The result is for display and expiry checks only; the server
// verifies every request.
func DecodeClaims(accessToken string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser(jwt.WithJSONNumber()).ParseUnverified(accessToken, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	return &claims, nil
}

// User builds the display identity, filling gaps the way the web client did.
func (c *Claims) User() *model.User {
	u := &model.User{
		ID:       c.subject(),
		Email:    c.Email,
		Username: c.Username,
		Role:     c.Role,
		Verified: true,
	}
	if u.ID == "" {
		u.ID = "unknown"
	}
	if u.Username == "" {
		u.Username = c.Email
	}
	if u.Email == "" {
		u.Email = "unknown"
	}
	if u.Username == "" {
		u.Username = "unknown"
	}
	if u.Role == "" {
		u.Role = "user"
	}
	return u
}

func (c *Claims) subject() string {
	switch sub := c.Sub.(type) {
	case nil:
		return ""
	case string:
		return sub
	default:
		return fmt.Sprint(sub)
	}
}
