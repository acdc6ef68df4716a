package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/fastshift/internal/service"
)

// PaymentHandler serves payment recording, history and charge intents.
type PaymentHandler struct {
	Payments *service.PaymentService
}

// NewPaymentHandler panics on a nil service.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	if payments == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: payments}
}

// recordRequest leaves presence checks to the service so that any missing
// field answers "Missing required fields".
type recordRequest struct {
	ParcelID      string          `json:"parcel_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	CreatedBy     string          `json:"created_by"`
	PaymentMethod string          `json:"payment_method"`
}

// Record handles POST /payments.
func (h *PaymentHandler) Record(c echo.Context) error {
	var req recordRequest
	if err := bindBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Payments.Record(ctx, service.RecordInput{
		ParcelID:      req.ParcelID,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		CreatedBy:     req.CreatedBy,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "Payment recorded and parcel marked as paid",
		"payment_id": id,
	})
}

// List handles GET /payments?email=.
func (h *PaymentHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Payments.List(ctx, principalEmail(c), c.QueryParam("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listBody(items))
}

type intentRequest struct {
	AmountInCents int64 `json:"amountInCents" validate:"required,gt=0"`
}

// CreateIntent handles POST /create-payment-intent.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req intentRequest
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	secret, err := h.Payments.CreateIntent(ctx, req.AmountInCents)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"clientSecret": secret})
}
