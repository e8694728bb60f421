package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/transitops/bus-ticketing/internal/core/domain"
	"github.com/transitops/bus-ticketing/internal/core/ports"
	"github.com/transitops/bus-ticketing/internal/pkg/metrics"
)

// IdentityKey is the echo context key holding the verified domain.Identity.
const IdentityKey = "identity"

const bearerScheme = "bearer"

// TokenVerifier verifies a signed token and returns the identity it asserts.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// Gate builds the authentication and role authorization middleware.
type Gate struct {
	tokens TokenVerifier
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

// NewGate returns a Gate. audit may be nil.
func NewGate(tokens TokenVerifier, audit ports.AuditRecorder, log zerolog.Logger) *Gate {
	return &Gate{tokens: tokens, audit: audit, log: log}
}

// Authenticate validates the bearer token and injects the identity into both
// the echo context and the request context.
//
// A missing or malformed Authorization header is answered with 401; a token
// that fails verification with 403.
func (g *Gate) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "access denied, no token provided")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) || strings.TrimSpace(parts[1]) == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("malformed_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "access denied, no token provided")
			}

			id, err := g.tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				reason := "invalid_signature"
				if errors.Is(err, domain.ErrTokenExpired) {
					reason = "expired"
				}
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				g.log.Info().
					Err(err).
					Str("reason", reason).
					Str("path", c.Path()).
					Str("remote_ip", c.RealIP()).
					Msg("token rejected")
				g.record(c, domain.EventTokenRejected, "", reason)
				return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
			}

			c.Set(IdentityKey, id)
			c.SetRequest(c.Request().WithContext(domain.WithIdentity(c.Request().Context(), id)))

			return next(c)
		}
	}
}

func (g *Gate) record(c echo.Context, typ domain.AuthEventType, actor, reason string) {
	if g.audit == nil {
		return
	}
	g.audit.Record(domain.AuthEvent{
		Type:      typ,
		Subject:   c.Request().Method + " " + c.Path(),
		Actor:     actor,
		Reason:    reason,
		RemoteIP:  c.RealIP(),
		Timestamp: time.Now().UTC(),
	})
}

// IdentityFrom returns the identity injected by Authenticate.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok
}
