package ports

import (
	"context"
	"time"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// RefreshTokenRepository persists refresh tokens keyed by their opaque value.
type RefreshTokenRepository interface {
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Save(ctx context.Context, token *domain.RefreshToken) error
	Delete(ctx context.Context, token *domain.RefreshToken) error
	DeleteByUser(ctx context.Context, email string) error
	// DeleteExpiredBefore removes rows whose expiry precedes cutoff and
	// returns the number deleted. Used by the background sweep.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
