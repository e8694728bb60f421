package handler

import "github.com/transitops/bus-ticketing/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,min=1"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=1"`
	Role     *string `json:"role,omitempty"     validate:"omitempty,role"`
}

type deleteUserRequest struct {
	ID    string `json:"id"    query:"id"`
	Email string `json:"email" query:"email"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user,omitempty"`
}

type deleteUserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type deleteAllResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

type statsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	TotalAdmins    int64 `json:"total_admins"`
	TotalOperators int64 `json:"total_operators"`
	TotalCommuters int64 `json:"total_commuters"`
}

type errorResponse struct {
	Error string `json:"error"`
}
