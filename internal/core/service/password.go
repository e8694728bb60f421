package service

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/transitops/bus-ticketing/internal/core/domain"
	"github.com/transitops/bus-ticketing/internal/pkg/metrics"
)

// DefaultBcryptCost matches 2^10 key expansion rounds.
const DefaultBcryptCost = 10

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, falling back to
// DefaultBcryptCost when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Plaintexts longer than
// bcrypt's 72-byte input limit are a validation error.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password exceeds 72 bytes", domain.ErrValidation)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hashed. Any error from bcrypt,
// including a malformed hash, is treated as a mismatch.
func (h *BcryptHasher) Verify(plaintext, hashed string) bool {
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return err == nil
}
