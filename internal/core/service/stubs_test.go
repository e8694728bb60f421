package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory user repository. Insert checks and stores under one lock, the
// way a unique index makes the real insert atomic.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	nextID  int
	err     error // if set, every call returns this error
	updates int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = strconv.Itoa(r.nextID)
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.byID[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for id, u := range r.byID {
		if id != user.ID && u.Email == user.Email {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	r.updates++
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) DeleteByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for id, u := range r.byID {
		if u.Email == email {
			delete(r.byID, id)
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return u, nil
}

func (r *stubUserRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	n := int64(len(r.byID))
	r.byID = make(map[string]*domain.User)
	return n, nil
}

func (r *stubUserRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	counts := make(map[domain.Role]int64)
	for _, u := range r.byID {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---------------------------------------------------------------------------
// Hasher that counts calls, wrapping a cheap bcrypt.
// ---------------------------------------------------------------------------

type countingHasher struct {
	inner  *BcryptHasher
	mu     sync.Mutex
	hashes int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{inner: NewBcryptHasher(4)}
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.inner.Hash(plaintext)
}

func (h *countingHasher) Verify(plaintext, hashed string) bool {
	return h.inner.Verify(plaintext, hashed)
}

func (h *countingHasher) hashCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes
}

// ---------------------------------------------------------------------------
// Audit recorder that keeps events in memory.
// ---------------------------------------------------------------------------

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *recordingAudit) Record(ev domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAudit) types() []domain.AuthEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
