// Package router registers the HTTP surface on an echo instance and attaches
// the guard list each route needs.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/fastshift/internal/handler"
	"github.com/iliyamo/fastshift/internal/middleware"
	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/service"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Services *service.Services
	Verifier middleware.Verifier
	// Limiter runs after the guards of each API route; nil disables it.
	Limiter echo.MiddlewareFunc
}

type routes struct {
	limiter echo.MiddlewareFunc
	authn   middleware.Guard
	admin   middleware.Guard
	rider   middleware.Guard
}

// Register mounts every route on e.
func Register(e *echo.Echo, d Deps) {
	if d.Services == nil || d.Verifier == nil {
		panic("router: nil services or verifier")
	}
	r := routes{
		limiter: d.Limiter,
		authn:   middleware.Authenticate(d.Verifier),
		admin:   middleware.RequireRole(d.Services.Users, model.RoleAdmin),
		rider:   middleware.RequireRole(d.Services.Users, model.RoleRider),
	}

	if e.Validator == nil {
		e.Validator = handler.NewValidator()
	}

	e.GET("/", handler.Banner)
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	registerParcels(e, handler.NewParcelHandler(d.Services.Parcels), r)
	registerPayments(e, handler.NewPaymentHandler(d.Services.Payments), r)
	registerTrackings(e, handler.NewTrackingHandler(d.Services.Trackings), r)
	registerRiders(e, handler.NewRiderHandler(d.Services.Riders), r)
	registerUsers(e, handler.NewUserHandler(d.Services.Users), r)
}

// public returns the middleware of a route without guards.
func (r routes) public() []echo.MiddlewareFunc {
	if r.limiter == nil {
		return nil
	}
	return []echo.MiddlewareFunc{r.limiter}
}

// guarded runs guards in order, then the limiter, so principal-keyed
// buckets see the authenticated email.
func (r routes) guarded(guards ...middleware.Guard) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{middleware.Guarded(guards...)}, r.public()...)
}
