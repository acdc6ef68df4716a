package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/handler"
)

func registerRiders(e *echo.Echo, h *handler.RiderHandler, r routes) {
	e.POST("/riders", h.Submit, r.public()...)
	e.GET("/riders/available", h.Available, r.public()...)

	admin := r.guarded(r.authn, r.admin)
	e.GET("/riders/pending", h.Pending, admin...)
	e.GET("/riders/active", h.Active, admin...)
	e.PATCH("/riders/status/:id", h.SetStatus, admin...)
}

func registerUsers(e *echo.Echo, h *handler.UserHandler, r routes) {
	e.POST("/users", h.Upsert, r.public()...)
	e.GET("/users/:email/role", h.Role, r.public()...)

	admin := r.guarded(r.authn, r.admin)
	e.GET("/users/search", h.Search, admin...)
	e.PATCH("/users/make-admin/:id", h.MakeAdmin, admin...)
	e.PATCH("/users/remove-admin/:id", h.RemoveAdmin, admin...)
}
