package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/service"
)

// ParcelHandler serves the parcel lifecycle routes.
type ParcelHandler struct {
	Parcels *service.ParcelService
}

// NewParcelHandler panics on a nil service.
func NewParcelHandler(parcels *service.ParcelService) *ParcelHandler {
	if parcels == nil {
		panic("nil service passed to NewParcelHandler")
	}
	return &ParcelHandler{Parcels: parcels}
}

// Create handles POST /parcels. Every key of the body is kept on the parcel.
func (h *ParcelHandler) Create(c echo.Context) error {
	var p model.Parcel
	if err := bindBody(c, &p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Parcels.Create(ctx, &p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":    true,
		"message":    "Parcel added successfully",
		"insertedId": id,
	})
}

// List handles GET /all-parcels.
func (h *ParcelHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Parcels.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listBody(items))
}

// Get handles GET /all-parcels/:id.
func (h *ParcelHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Parcels.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p})
}

// ListMine handles GET /my-parcels?email=.
func (h *ParcelHandler) ListMine(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Parcels.ListByCreator(ctx, principalEmail(c), c.QueryParam("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listBody(items))
}

// ListAssignable handles GET /parcels/assignable.
func (h *ParcelHandler) ListAssignable(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Parcels.ListAssignable(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listBody(items))
}

type assignRequest struct {
	RiderID    string `json:"rider_id" validate:"required"`
	RiderName  string `json:"rider_name"`
	RiderEmail string `json:"rider_email" validate:"omitempty,email"`
}

// Assign handles PATCH /parcels/:id/assign.
func (h *ParcelHandler) Assign(c echo.Context) error {
	var req assignRequest
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Parcels.AssignRider(ctx, c.Param("id"), service.AssignInput{
		RiderID:    req.RiderID,
		RiderName:  req.RiderName,
		RiderEmail: req.RiderEmail,
	})
	if err != nil {
		return respondError(c, err)
	}
	msg := "Rider assigned"
	if res.Parcel.Modified == 0 {
		msg = "Parcel is not assignable"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     res.Parcel.Modified > 0,
		"message":     msg,
		"parcel":      res.Parcel,
		"rider":       res.Rider,
		"rider_error": res.RiderError,
	})
}

// RiderTasks handles GET /parcels/rider-tasks?email=.
func (h *ParcelHandler) RiderTasks(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Parcels.ListRiderTasks(ctx, principalEmail(c), c.QueryParam("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// RiderCompleted handles GET /parcels/rider-completed?email=.
func (h *ParcelHandler) RiderCompleted(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Parcels.ListRiderCompleted(ctx, principalEmail(c), c.QueryParam("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// PickedUp handles PATCH /parcels/:id/picked-up.
func (h *ParcelHandler) PickedUp(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Parcels.MarkPickedUp(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type deliveredRequest struct {
	DeliveryStatus string `json:"delivery_status" validate:"omitempty,oneof=delivered service_center_delivered"`
}

// Delivered handles PATCH /parcels/:id/delivered. The body is optional.
func (h *ParcelHandler) Delivered(c echo.Context) error {
	var req deliveredRequest
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Parcels.MarkDelivered(ctx, c.Param("id"), model.DeliveryStatus(req.DeliveryStatus))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cashout handles PATCH /parcels/:id/cashout.
func (h *ParcelHandler) Cashout(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Parcels.Cashout(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// StatusCount handles GET /parcels/delivery/status-count.
func (h *ParcelHandler) StatusCount(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	counts, err := h.Parcels.StatusCounts(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Delete handles DELETE /parcels/:id.
func (h *ParcelHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	n, err := h.Parcels.Delete(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Parcel deleted successfully",
		"deletedCount": n,
	})
}
