package ports

import (
	"context"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// UserRepository defines persistence operations for user credentials.
// Implementations must enforce email uniqueness with a storage-level
// constraint and report collisions as domain.ErrDuplicateIdentity.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Update persists the mutable fields of user (name, email, hash, role).
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	DeleteByEmail(ctx context.Context, email string) (*domain.User, error)
	DeleteByID(ctx context.Context, id string) (*domain.User, error)
	DeleteAll(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}
