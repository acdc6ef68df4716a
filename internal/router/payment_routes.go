package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/handler"
)

func registerPayments(e *echo.Echo, h *handler.PaymentHandler, r routes) {
	e.POST("/payments", h.Record, r.public()...)
	e.GET("/payments", h.List, r.guarded(r.authn)...)
	e.POST("/create-payment-intent", h.CreateIntent, r.public()...)
}

func registerTrackings(e *echo.Echo, h *handler.TrackingHandler, r routes) {
	e.POST("/trackings", h.Append, r.public()...)
	e.GET("/trackings/:trackingId", h.List, r.public()...)
}
