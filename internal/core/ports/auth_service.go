package ports

import (
	"context"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput carries an admin edit of a user. Nil fields are unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserStats reports user totals per role.
type UserStats struct {
	Total     int64
	Admins    int64
	Operators int64
	Commuters int64
}

// AuthService is the credential lifecycle exposed to the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	// DeleteUser removes the user matching id when set, else email.
	DeleteUser(ctx context.Context, id, email string) (*domain.User, error)
	DeleteAllUsers(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*UserStats, error)
}
