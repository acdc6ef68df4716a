package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fastshift/internal/metrics"
	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/payment"
	"github.com/iliyamo/fastshift/internal/queue"
	"github.com/iliyamo/fastshift/internal/store"
)

// PaymentService records payments and creates charge intents.
type PaymentService struct {
	base
	gateway payment.Gateway
}

// RecordInput is a completed charge reported by the web client.
type RecordInput struct {
	ParcelID      string
	Amount        decimal.Decimal
	TransactionID string
	CreatedBy     string
	PaymentMethod string
}

// Record marks the parcel paid and stores the payment. The two writes are
// issued together but stand on their own unless atomic writes are enabled.
func (s *PaymentService) Record(ctx context.Context, in RecordInput) (string, error) {
	if strings.TrimSpace(in.ParcelID) == "" || in.Amount.IsZero() ||
		strings.TrimSpace(in.TransactionID) == "" || strings.TrimSpace(in.CreatedBy) == "" {
		return "", badRequest("Missing required fields")
	}
	if in.Amount.IsNegative() {
		return "", badRequest("amount must be positive")
	}

	paidAt := s.now()
	p := &model.Payment{
		ParcelID:      in.ParcelID,
		Amount:        in.Amount,
		TransactionID: in.TransactionID,
		CreatedBy:     normalizeEmail(in.CreatedBy),
		PaymentMethod: in.PaymentMethod,
		PaidAtString:  paidAt.Format(time.RFC3339Nano),
		PaidAt:        paidAt,
	}

	var id string
	err := s.run(ctx, func(ctx context.Context, st *store.Store) error {
		res, err := st.Parcels.MarkPaid(ctx, in.ParcelID)
		if err != nil {
			return s.fail("payment.mark_paid", "Payment failed", err)
		}
		if res.Matched == 0 {
			// drivers that count changed rows report 0 for an already paid parcel
			if _, err := st.Parcels.Get(ctx, in.ParcelID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return notFound("Parcel not found")
				}
				return s.fail("payment.mark_paid", "Payment failed", err)
			}
		}
		id, err = st.Payments.Insert(ctx, p)
		if err != nil {
			return s.fail("payment.insert", "Payment failed", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.PaymentsRecordedTotal.Inc()
	s.publish(ctx, queue.ParcelEvent{
		Type: queue.EventPaid, ParcelID: in.ParcelID,
		Actor: p.CreatedBy, Amount: in.Amount.String(),
	})
	return id, nil
}

// List returns payments newest first. With queryEmail set only that
// email's principal may read them; without it every payment is returned.
func (s *PaymentService) List(ctx context.Context, principalEmail, queryEmail string) ([]*model.Payment, error) {
	if queryEmail != "" && !sameEmail(principalEmail, queryEmail) {
		return nil, Forbidden()
	}
	out, err := s.st.Payments.List(ctx, normalizeEmail(queryEmail))
	if err != nil {
		return nil, s.fail("payment.list", "Failed to fetch payments", err)
	}
	return out, nil
}

// CreateIntent asks the gateway for a card charge intent.
func (s *PaymentService) CreateIntent(ctx context.Context, amountInCents int64) (string, error) {
	if amountInCents <= 0 {
		return "", badRequest("amountInCents must be positive")
	}
	if s.gateway == nil {
		return "", s.fail("payment.intent", "Payment gateway not configured", payment.ErrNotConfigured)
	}
	secret, err := s.gateway.CreateIntent(ctx, amountInCents)
	if err != nil {
		msg := "Failed to create payment intent"
		if errors.Is(err, payment.ErrNotConfigured) {
			msg = "Payment gateway not configured"
		}
		return "", s.fail("payment.intent", msg, err)
	}
	return secret, nil
}
