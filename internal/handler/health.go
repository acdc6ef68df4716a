package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Banner answers GET / so a browser hit shows the server is up.
func Banner(c echo.Context) error {
	return c.String(http.StatusOK, "FastShift server is running")
}

// Health is the liveness probe used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
