package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/transitops/bus-ticketing/internal/core/domain"
	"github.com/transitops/bus-ticketing/internal/core/ports"
)

// CredentialStore wraps a UserRepository and applies password hashing on
// every write that sets or changes the secret.
type CredentialStore struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewCredentialStore(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// Create hashes the password unconditionally and inserts the user. Identity
// uniqueness is left to the repository's unique constraint.
func (s *CredentialStore) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidRole)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, domain.ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *CredentialStore) FindByIdentity(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies patch to the persisted user. The password is re-hashed only
// when the supplied value differs from the stored secret; name, email and
// role edits leave the hash untouched.
func (s *CredentialStore) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	next := *current
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Email != nil {
		next.Email = *patch.Email
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, fmt.Errorf("update user: %w", domain.ErrInvalidRole)
		}
		next.Role = *patch.Role
	}
	if patch.Password != nil && !s.hasher.Verify(*patch.Password, current.PasswordHash) {
		hash, err := s.hasher.Hash(*patch.Password)
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		next.PasswordHash = hash
		s.log.Debug().Str("user_id", id).Msg("password changed")
	}
	next.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (s *CredentialStore) DeleteByIdentity(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.DeleteByEmail(ctx, email)
}

func (s *CredentialStore) DeleteByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.DeleteByID(ctx, id)
}

func (s *CredentialStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}

func (s *CredentialStore) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	return s.repo.CountByRole(ctx)
}
