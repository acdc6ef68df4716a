package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/identity"
)

const principalKey = "principal"

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c echo.Context) (identity.Principal, bool) {
	p, ok := c.Get(principalKey).(identity.Principal)
	return p, ok
}

// principalEmail returns the principal's email, or "anon" for requests
// that have not been authenticated.
func principalEmail(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok && p.Email != "" {
		return p.Email
	}
	return "anon"
}
