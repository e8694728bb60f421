package ports

import (
	"context"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// PasswordHasher turns plaintext secrets into verifiable one-way hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hashed. Malformed hashes
	// never verify.
	Verify(plaintext, hashed string) bool
}

// CredentialStore is the user store with hashing applied on write.
type CredentialStore interface {
	Create(ctx context.Context, in domain.NewUser) (*domain.User, error)
	FindByIdentity(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	DeleteByIdentity(ctx context.Context, email string) (*domain.User, error)
	DeleteByID(ctx context.Context, id string) (*domain.User, error)
	DeleteAll(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

// TokenService issues and verifies signed, time-bound identity assertions.
type TokenService interface {
	Issue(userID string, role domain.Role) (string, error)
	// Verify returns domain.ErrInvalidSignature or domain.ErrTokenExpired on
	// failure; both wrap domain.ErrInvalidToken.
	Verify(token string) (domain.Identity, error)
}
