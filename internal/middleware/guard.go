package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/service"
)

// Guard is a precondition checked before a handler runs. It returns nil to
// let the request through or a *service.Error describing the refusal.
type Guard func(c echo.Context) error

// Guarded runs guards in order before the handler and stops at the first
// failure.
func Guarded(guards ...Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, g := range guards {
				if err := g(c); err != nil {
					return deny(c, err)
				}
			}
			return next(c)
		}
	}
}

// deny writes the refusal body for a failed guard.
func deny(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"
	switch service.KindOf(err) {
	case service.KindUnauthenticated:
		status, msg = http.StatusUnauthorized, "Unauthorized access"
	case service.KindForbidden:
		status, msg = http.StatusForbidden, "Forbidden access"
	case service.KindBadRequest:
		status, msg = http.StatusBadRequest, "Bad request"
	default:
		c.Logger().Errorf("guard failed: %v", err)
	}
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}
