package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/service"
)

// TrackingHandler serves the append-only tracking log.
type TrackingHandler struct {
	Trackings *service.TrackingService
}

// NewTrackingHandler panics on a nil service.
func NewTrackingHandler(trackings *service.TrackingService) *TrackingHandler {
	if trackings == nil {
		panic("nil service passed to NewTrackingHandler")
	}
	return &TrackingHandler{Trackings: trackings}
}

// Append handles POST /trackings.
func (h *TrackingHandler) Append(c echo.Context) error {
	var e model.TrackingEvent
	if err := bindBody(c, &e); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	id, err := h.Trackings.Append(ctx, &e)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":    true,
		"message":    "Tracking update added",
		"insertedId": id,
	})
}

// List handles GET /trackings/:trackingId.
func (h *TrackingHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Trackings.List(ctx, c.Param("trackingId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
