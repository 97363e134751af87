package domain

import "time"

// DemoKey tracks the activation allowance of a demo key for one tenant.
// Natural key: (key_id, org).
// Created lazily on first redemption from the signed demo token's own claims.
type DemoKey struct {
	ID             string     `json:"id"`
	KeyID          string     `json:"key_id"`
	Org            string     `json:"org"`
	Revoked        bool       `json:"revoked"`
	ExpiresAt      time.Time  `json:"expires_at"`
	MaxActivations int        `json:"max_activations"`
	Activations    int        `json:"activations"`
	FirstUsedAt    *time.Time `json:"first_used_at,omitempty"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
}

// DemoRedemption is an append-only audit record of a successful redemption.
type DemoRedemption struct {
	KeyID      string    `json:"key_id"`
	Org        string    `json:"org"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// DemoClaims is the decoded, signature-checked payload of a demo redemption
// token.
type DemoClaims struct {
	Org       string
	KeyID     string
	Scope     string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}
