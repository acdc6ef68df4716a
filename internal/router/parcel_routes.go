package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/handler"
)

func registerParcels(e *echo.Echo, h *handler.ParcelHandler, r routes) {
	e.POST("/parcels", h.Create, r.public()...)
	e.GET("/all-parcels", h.List, r.public()...)
	e.GET("/all-parcels/:id", h.Get, r.public()...)
	e.GET("/my-parcels", h.ListMine, r.guarded(r.authn)...)

	// static segments win over /parcels/:id in echo's router
	e.GET("/parcels/assignable", h.ListAssignable, r.public()...)
	e.GET("/parcels/rider-tasks", h.RiderTasks, r.guarded(r.authn, r.rider)...)
	e.GET("/parcels/rider-completed", h.RiderCompleted, r.guarded(r.authn, r.rider)...)
	e.GET("/parcels/delivery/status-count", h.StatusCount, r.public()...)

	e.PATCH("/parcels/:id/assign", h.Assign, r.public()...)
	e.PATCH("/parcels/:id/picked-up", h.PickedUp, r.public()...)
	e.PATCH("/parcels/:id/delivered", h.Delivered, r.public()...)
	e.PATCH("/parcels/:id/cashout", h.Cashout, r.public()...)
	e.DELETE("/parcels/:id", h.Delete, r.public()...)
}
