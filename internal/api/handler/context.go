package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/transitops/bus-ticketing/internal/api/middleware"
	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Authenticate middleware.
// Its absence means the route was registered without the gate.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		return domain.Identity{}, fmt.Errorf("missing authentication claims: %w", domain.ErrUnauthenticated)
	}
	return id, nil
}
