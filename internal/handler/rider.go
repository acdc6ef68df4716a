package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/service"
)

// RiderHandler serves rider applications and their review.
type RiderHandler struct {
	Riders *service.RiderService
}

// NewRiderHandler panics on a nil service.
func NewRiderHandler(riders *service.RiderService) *RiderHandler {
	if riders == nil {
		panic("nil service passed to NewRiderHandler")
	}
	return &RiderHandler{Riders: riders}
}

// Submit handles POST /riders.
func (h *RiderHandler) Submit(c echo.Context) error {
	var r model.Rider
	if err := bindBody(c, &r); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	id, err := h.Riders.Submit(ctx, &r)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"acknowledged": true, "insertedId": id})
}

// Pending handles GET /riders/pending.
func (h *RiderHandler) Pending(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Riders.ListPending(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Active handles GET /riders/active.
func (h *RiderHandler) Active(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Riders.ListActive(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Available handles GET /riders/available?district=.
func (h *RiderHandler) Available(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Riders.ListAvailable(ctx, c.QueryParam("district"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

type riderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active rejected"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// SetStatus handles PATCH /riders/status/:id.
func (h *RiderHandler) SetStatus(c echo.Context) error {
	var req riderStatusRequest
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Riders.SetStatus(ctx, c.Param("id"), model.RiderStatus(req.Status), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
