package domain

import "time"

// RefreshToken is the opaque long-lived credential exchanged for fresh access
// tokens. At most one non-revoked token exists per user at any time.
type RefreshToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserEmail string    `json:"user_email"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token's expiry lies in the past.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// AuthResponse is the JSON body returned by login, register, refresh and
// demo-login.
type AuthResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Roles       []string  `json:"roles"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
}

// AuthResult pairs the response body with the refresh token that was just
// issued or rotated. Never persisted; built per request.
type AuthResult struct {
	Response     AuthResponse
	RefreshToken *RefreshToken
}

// DecodedToken is the verified payload of an access token.
type DecodedToken struct {
	Subject   string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
