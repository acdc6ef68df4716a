package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/identity"
	"github.com/iliyamo/fastshift/internal/service"
)

// Verifier turns an Authorization header into a principal.
type Verifier interface {
	Verify(ctx context.Context, header string) (identity.Principal, error)
}

// Authenticate verifies the bearer token and stores the principal for the
// guards and handlers that follow. A missing or malformed header is
// Unauthorized; a token the verifier rejects is Forbidden.
func Authenticate(v Verifier) Guard {
	return func(c echo.Context) error {
		p, err := v.Verify(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				return service.Unauthenticated()
			}
			return service.Forbidden()
		}
		c.Set(principalKey, p)
		return nil
	}
}
