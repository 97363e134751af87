package ports

import (
	"context"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// UserRepository defines the persistence interface for user accounts.
// Email lookups are case-insensitive.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	FindByDemoOrg(ctx context.Context, org string) (*domain.UserAccount, error)
	Create(ctx context.Context, user *domain.UserAccount) (*domain.UserAccount, error)
	Save(ctx context.Context, user *domain.UserAccount) error
}
