package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/transitops/bus-ticketing/internal/core/domain"
	"github.com/transitops/bus-ticketing/internal/core/ports"
	"github.com/transitops/bus-ticketing/internal/pkg/metrics"
)

// AuthService implements registration, login and the admin user lifecycle.
type AuthService struct {
	store  ports.CredentialStore
	hasher ports.PasswordHasher
	tokens ports.TokenService
	audit  ports.AuditRecorder
	log    zerolog.Logger

	// decoyHash is verified against when the identity is unknown so both
	// login failure paths pay the same hashing cost.
	decoyHash string
}

func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = nopRecorder{}
	}
	decoy, err := hasher.Hash("decoy-password-for-unknown-identities")
	if err != nil {
		log.Warn().Err(err).Msg("failed to build decoy hash")
	}
	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		audit:     audit,
		log:       log,
		decoyHash: decoy,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" || in.Role == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return nil, err
	}

	user, err := s.store.Create(ctx, domain.NewUser{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateIdentity):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		case errors.Is(err, domain.ErrValidation):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		default:
			metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		}
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.record(ctx, domain.EventRegistered, user.Email, string(user.Role))
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a token. Unknown identities and wrong
// passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.FindByIdentity(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
			return "", nil, fmt.Errorf("login: %w", err)
		}
		s.hasher.Verify(password, s.decoyHash)
		s.loginFailed(ctx, email, "unknown_identity")
		return "", nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, email, "wrong_password")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return "", nil, fmt.Errorf("login: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.record(ctx, domain.EventLoginSuccess, user.ID, "")
	return token, user, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email, reason string) {
	metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
	s.log.Debug().Str("email", email).Str("reason", reason).Msg("login rejected")
	s.record(ctx, domain.EventLoginFailure, email, reason)
}

func (s *AuthService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	patch := domain.UserPatch{Name: in.Name, Email: in.Email, Password: in.Password}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		patch.Role = &role
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if (patch.Name != nil && strings.TrimSpace(*patch.Name) == "") ||
		(patch.Email != nil && strings.TrimSpace(*patch.Email) == "") ||
		(patch.Password != nil && *patch.Password == "") {
		return nil, fmt.Errorf("%w: fields cannot be empty", domain.ErrValidation)
	}

	user, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.record(ctx, domain.EventUserUpdated, user.ID, "")
	return user, nil
}

// DeleteUser removes a user by id, or by email when id is empty.
func (s *AuthService) DeleteUser(ctx context.Context, id, email string) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case id != "":
		user, err = s.store.DeleteByID(ctx, id)
	case email != "":
		user, err = s.store.DeleteByIdentity(ctx, email)
	default:
		return nil, fmt.Errorf("%w: user id or email is required", domain.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.EventUserDeleted, user.Email, "")
	s.log.Info().Str("user_id", user.ID).Msg("user deleted")
	return user, nil
}

func (s *AuthService) DeleteAllUsers(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all users: %w", err)
	}

	s.record(ctx, domain.EventUsersPurged, "*", fmt.Sprintf("%d users", n))
	s.log.Warn().Int64("deleted", n).Msg("all users deleted")
	return n, nil
}

func (s *AuthService) Stats(ctx context.Context) (*ports.UserStats, error) {
	counts, err := s.store.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	stats := &ports.UserStats{
		Admins:    counts[domain.RoleAdmin],
		Operators: counts[domain.RoleOperator],
		Commuters: counts[domain.RoleCommuter],
	}
	stats.Total = stats.Admins + stats.Operators + stats.Commuters
	return stats, nil
}

// EnsureAdmin creates an admin account for email when none exists. It is
// used to bootstrap an empty store.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.store.FindByIdentity(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	_, err = s.store.Create(ctx, domain.NewUser{Name: name, Email: email, Password: password, Role: domain.RoleAdmin})
	if errors.Is(err, domain.ErrDuplicateIdentity) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return true, nil
}

func (s *AuthService) record(ctx context.Context, typ domain.AuthEventType, subject, reason string) {
	ev := domain.AuthEvent{
		Type:      typ,
		Subject:   subject,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	if id, ok := domain.IdentityFromContext(ctx); ok {
		ev.Actor = id.UserID
	}
	s.audit.Record(ev)
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.AuthEvent) {}
