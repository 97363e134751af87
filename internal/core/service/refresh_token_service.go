package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pvmanagement/auth-system/internal/core/domain"
	"github.com/pvmanagement/auth-system/internal/core/ports"
)

// RefreshTokenService enforces the one-active-token-per-user invariant.
// Token rows move Active -> {Rotated, Revoked, Expired}; rotated and revoked
// rows are absorbing, a replacement is always a fresh independent row.
type RefreshTokenService struct {
	repo       ports.RefreshTokenRepository
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewRefreshTokenService(repo ports.RefreshTokenRepository, refreshTTL time.Duration, log zerolog.Logger) *RefreshTokenService {
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &RefreshTokenService{repo: repo, refreshTTL: refreshTTL, log: log}
}

// CreateForUser replaces any existing token rows owned by the user with a
// single fresh one. Calling it twice leaves exactly one active row.
func (s *RefreshTokenService) CreateForUser(ctx context.Context, user *domain.UserAccount) (*domain.RefreshToken, error) {
	if err := s.repo.DeleteByUser(ctx, user.Email); err != nil {
		return nil, err
	}
	return s.issue(ctx, user.Email)
}

// Rotate exchanges a presented token for a replacement. Unknown, revoked and
// expired tokens all fail with ErrInvalidRefreshToken; in the revoked and
// expired cases the stale row is deleted as cleanup and no replacement is
// issued.
func (s *RefreshTokenService) Rotate(ctx context.Context, token string) (*domain.RefreshToken, error) {
	existing, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	if existing.Revoked || existing.Expired(time.Now().UTC()) {
		if err := s.repo.Delete(ctx, existing); err != nil {
			s.log.Warn().Err(err).Str("user", existing.UserEmail).Msg("stale refresh token cleanup failed")
		}
		return nil, domain.ErrInvalidRefreshToken
	}

	existing.Revoked = true
	if err := s.repo.Save(ctx, existing); err != nil {
		return nil, err
	}

	return s.issue(ctx, existing.UserEmail)
}

// Revoke marks the named token revoked. Unknown tokens are a no-op;
// revoking twice is harmless.
func (s *RefreshTokenService) Revoke(ctx context.Context, token string) error {
	existing, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}

	existing.Revoked = true
	return s.repo.Save(ctx, existing)
}

func (s *RefreshTokenService) issue(ctx context.Context, email string) (*domain.RefreshToken, error) {
	now := time.Now().UTC()
	token := &domain.RefreshToken{
		Token:     uuid.NewString(),
		UserEmail: email,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.repo.Save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}
