package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidRole        = errors.New("invalid role")
	ErrDuplicateIdentity  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInsufficientRole   = errors.New("insufficient role")

	// ErrInvalidToken is the parent of every token verification failure.
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature", ErrInvalidToken)
	ErrTokenExpired     = fmt.Errorf("%w: token expired", ErrInvalidToken)
)
