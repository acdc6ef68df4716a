package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/service"
)

// RoleChecker looks up the stored role of a user.
type RoleChecker interface {
	HasRole(ctx context.Context, email, role string) (bool, error)
}

// RequireRole lets the request through only when the stored user with the
// principal's email holds role. A missing user is Forbidden; guards never
// create users. It must run after Authenticate.
func RequireRole(users RoleChecker, role string) Guard {
	return func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return service.Unauthenticated()
		}
		ok, err := users.HasRole(c.Request().Context(), p.Email, role)
		if err != nil {
			return err
		}
		if !ok {
			return service.Forbidden()
		}
		return nil
	}
}
