package ports

import (
	"context"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// DemoKeyRepository persists demo keys under a unique (key_id, org) pair.
type DemoKeyRepository interface {
	FindByKeyIDAndOrg(ctx context.Context, keyID, org string) (*domain.DemoKey, error)
	FindByKeyID(ctx context.Context, keyID string) (*domain.DemoKey, error)
	// Insert fails with domain.ErrDemoKeyExists when another caller has
	// already inserted the same (key_id, org) pair.
	Insert(ctx context.Context, key *domain.DemoKey) error
	Save(ctx context.Context, key *domain.DemoKey) error
}

// DemoRedemptionRepository records successful redemptions. Append-only.
type DemoRedemptionRepository interface {
	Insert(ctx context.Context, redemption *domain.DemoRedemption) error
}
