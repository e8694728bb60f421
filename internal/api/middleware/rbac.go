package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/transitops/bus-ticketing/internal/core/domain"
	"github.com/transitops/bus-ticketing/internal/pkg/metrics"
)

// Authorize enforces role-based access control. It must run after
// Authenticate. A request without a verified identity fails with
// domain.ErrUnauthenticated (401), a role outside the allow-list with
// domain.ErrInsufficientRole (403); the HTTP error handler renders both.
// Membership is exact: no role implies another.
func (g *Gate) Authorize(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		if !r.Valid() {
			panic(fmt.Sprintf("middleware: unknown role %q in allow-list", r))
		}
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return fmt.Errorf("authorize %s: %w", c.Path(), domain.ErrUnauthenticated)
			}

			switch id.Role {
			case domain.RoleAdmin, domain.RoleOperator, domain.RoleCommuter:
				if _, ok := allowed[id.Role]; ok {
					return next(c)
				}
			}

			metrics.AuthorizationDenialsTotal.WithLabelValues("insufficient_role").Inc()
			g.record(c, domain.EventAccessDenied, id.UserID, string(id.Role))
			return fmt.Errorf("authorize %s as %q: %w", c.Path(), id.Role, domain.ErrInsufficientRole)
		}
	}
}
