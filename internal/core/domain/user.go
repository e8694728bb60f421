package domain

import (
	"fmt"
	"time"
)

// Role is the single access level attached to a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleCommuter Role = "commuter"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleOperator, RoleCommuter}

// ParseRole converts a raw string into a Role, rejecting anything outside the
// fixed enumeration.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleOperator, RoleCommuter:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether r is a member of the enumeration.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// User models a registered account. Email is the login identity.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser carries the registration input. Password is plaintext and is
// hashed by the credential store before it reaches the repository.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UserPatch describes a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Role == nil
}
