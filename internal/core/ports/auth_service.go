package ports

import (
	"context"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// RefreshTokenService owns refresh-token creation, rotation and revocation.
type RefreshTokenService interface {
	CreateForUser(ctx context.Context, user *domain.UserAccount) (*domain.RefreshToken, error)
	Rotate(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService implements login, registration and the token refresh cycle.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	IssueTokensForUser(ctx context.Context, user *domain.UserAccount) (*domain.AuthResult, error)
	Profile(ctx context.Context, email string) (*domain.UserProfile, error)
}
