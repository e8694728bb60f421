package service

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

func TestBcryptHasher_HashIsSaltedAndVerifies(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if a == "p1" || b == "p1" {
		t.Fatalf("hash must not equal plaintext")
	}
	if a == b {
		t.Fatalf("expected different salts for identical plaintexts")
	}
	if !h.Verify("p1", a) || !h.Verify("p1", b) {
		t.Fatalf("expected both hashes to verify")
	}
	if h.Verify("p2", a) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	for _, cost := range []int{0, -1, bcrypt.MaxCost + 1} {
		h := NewBcryptHasher(cost)
		if h.cost != DefaultBcryptCost {
			t.Fatalf("cost %d: expected fallback to %d, got %d", cost, DefaultBcryptCost, h.cost)
		}
	}

	hash, err := NewBcryptHasher(DefaultBcryptCost).Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	got, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if got != 10 {
		t.Fatalf("expected cost 10, got %d", got)
	}
}

func TestBcryptHasher_MalformedHashFailsClosed(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	for _, hashed := range []string{"", "plaintext", "$2a$10$short", "p1"} {
		if h.Verify("p1", hashed) {
			t.Fatalf("malformed hash %q must not verify", hashed)
		}
	}
}

func TestBcryptHasher_TooLongIsValidationError(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72 bytes must hash: %v", err)
	}
	_, err := h.Hash(strings.Repeat("a", 73))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
