package ports

import (
	"context"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// DemoAccessService redeems signed demo tokens into real session tokens.
type DemoAccessService interface {
	Redeem(ctx context.Context, demoToken, clientIP, userAgent string) (*domain.AuthResult, error)
	FindTokenDetails(ctx context.Context, keyID string) (*domain.DemoKey, error)
}

// DemoRateLimiter gates demo-login attempts per client IP. TryConsume must be
// safe for concurrent use; true admits the request.
type DemoRateLimiter interface {
	TryConsume(ctx context.Context, ip string) bool
}
