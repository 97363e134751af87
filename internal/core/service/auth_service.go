package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pvmanagement/auth-system/internal/core/domain"
	"github.com/pvmanagement/auth-system/internal/core/ports"
)

// AuthService implements registration, login and the refresh cycle. Access
// and refresh tokens are always issued together through IssueTokensForUser so
// both reflect the same role snapshot.
type AuthService struct {
	users   ports.UserRepository
	tokens  ports.TokenService
	refresh ports.RefreshTokenService
	log     zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, refresh ports.RefreshTokenService, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, refresh: refresh, log: log}
}

func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.UserAccount{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", created.Email).Msg("user registered")
	return s.IssueTokensForUser(ctx, created)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.IssueTokensForUser(ctx, user)
}

// IssueTokensForUser is the single choke point minting an access token and a
// replacement refresh token for the same role snapshot.
func (s *AuthService) IssueTokensForUser(ctx context.Context, user *domain.UserAccount) (*domain.AuthResult, error) {
	response, err := s.accessResponse(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refresh.CreateForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResult{Response: response, RefreshToken: refreshToken}, nil
}

// Refresh rotates the presented refresh token and mints a fresh access token
// for its owner. Roles are re-read at refresh time, never cached from login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	rotated, err := s.refresh.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, rotated.UserEmail)
	if err != nil {
		return nil, err
	}

	response, err := s.accessResponse(user)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResult{Response: response, RefreshToken: rotated}, nil
}

// Logout revokes the presented refresh token. Always succeeds regardless of
// the token's prior state.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Revoke(ctx, refreshToken)
}

func (s *AuthService) Profile(ctx context.Context, email string) (*domain.UserProfile, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &domain.UserProfile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		DemoOrg:     user.DemoOrg,
		Roles:       user.RoleNames(),
	}, nil
}

func (s *AuthService) accessResponse(user *domain.UserAccount) (domain.AuthResponse, error) {
	roles := user.RoleNames()
	access, err := s.tokens.Generate(user.Email, roles, map[string]any{"name": user.DisplayName})
	if err != nil {
		return domain.AuthResponse{}, err
	}
	expiresAt, err := s.tokens.ExtractExpiry(access)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{
		Token:       access,
		ExpiresAt:   expiresAt,
		Roles:       roles,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}, nil
}
