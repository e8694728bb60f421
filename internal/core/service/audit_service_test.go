package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// ----- Stubs -----

type stubAuditRepo struct {
	insertErr error
	inserted  []*domain.AuthEvent
}

func (r *stubAuditRepo) InsertEvent(_ context.Context, ev *domain.AuthEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, ev)
	return nil
}

// ----- Tests -----

func TestAuditService_Process_Stores(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	ev := domain.AuthEvent{Type: domain.EventLoginFailure, Subject: "a@x", Reason: "wrong_password", Timestamp: time.Now()}
	if err := svc.Process(context.Background(), ev); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].Subject != "a@x" {
		t.Fatalf("unexpected inserts: %+v", repo.inserted)
	}
}

func TestAuditService_Process_MissingType(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	err := svc.Process(context.Background(), domain.AuthEvent{Subject: "a@x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("expected nothing to be stored")
	}
}

func TestAuditService_Process_RepoError(t *testing.T) {
	boom := errors.New("write failed")
	svc := NewAuditService(&stubAuditRepo{insertErr: boom}, zerolog.Nop())

	err := svc.Process(context.Background(), domain.AuthEvent{Type: domain.EventRegistered})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}
