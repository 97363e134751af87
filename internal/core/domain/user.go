package domain

import "time"

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
	RoleDemo  = "ROLE_DEMO"
)

// UserAccount models an authenticated principal with its role set.
type UserAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	DemoOrg      string    `json:"demo_org,omitempty"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the account carries the given role name.
func (u *UserAccount) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleNames returns a copy of the account's role set.
func (u *UserAccount) RoleNames() []string {
	out := make([]string, len(u.Roles))
	copy(out, u.Roles)
	return out
}

// UserProfile is the read-model returned by the profile endpoint.
type UserProfile struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	DemoOrg     string   `json:"demo_org,omitempty"`
	Roles       []string `json:"roles"`
}
