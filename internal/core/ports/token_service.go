package ports

import (
	"time"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// TokenService signs and verifies access tokens and validates demo
// redemption tokens. Stateless.
type TokenService interface {
	Generate(subject string, roles []string, claims map[string]any) (string, error)
	Verify(token string) (*domain.DecodedToken, error)
	ExtractExpiry(token string) (time.Time, error)
	GenerateDemoToken(org, keyID, scope string) (string, error)
	ParseAndValidateDemoToken(token string) (*domain.DemoClaims, error)
}
