// Package service holds the parcel lifecycle, rider, user, payment and
// tracking operations. Services share one storage context; none of them
// keeps state between requests.
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/fastshift/internal/metrics"
	"github.com/iliyamo/fastshift/internal/payment"
	"github.com/iliyamo/fastshift/internal/queue"
	"github.com/iliyamo/fastshift/internal/store"
)

// EventPublisher receives lifecycle events. Publishing is best-effort: a
// failure never fails the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ParcelEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ParcelEvent) error { return nil }

// Deps are the collaborators shared by every service.
type Deps struct {
	Store   *store.Store
	Gateway payment.Gateway
	Events  EventPublisher
	Log     *zap.Logger
	// Atomic runs two-step writes in one store transaction.
	Atomic bool
	// Now defaults to the wall clock in UTC.
	Now func() time.Time
}

// Services bundles the services built from one Deps.
type Services struct {
	Parcels   *ParcelService
	Riders    *RiderService
	Users     *UserService
	Payments  *PaymentService
	Trackings *TrackingService
}

// New builds every service on d.
func New(d Deps) *Services {
	b := newBase(d)
	return &Services{
		Parcels:   &ParcelService{base: b},
		Riders:    &RiderService{base: b},
		Users:     &UserService{base: b},
		Payments:  &PaymentService{base: b, gateway: d.Gateway},
		Trackings: &TrackingService{base: b},
	}
}

type base struct {
	st     *store.Store
	events EventPublisher
	log    *zap.Logger
	atomic bool
	now    func() time.Time
}

func newBase(d Deps) base {
	b := base{st: d.Store, events: d.Events, log: d.Log, atomic: d.Atomic, now: d.Now}
	if b.events == nil {
		b.events = NopPublisher{}
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
	}
	return b
}

// fail counts and wraps a store or collaborator failure.
func (b base) fail(op, msg string, err error) error {
	metrics.OperationErrorsTotal.WithLabelValues(op).Inc()
	b.log.Error(msg, zap.String("op", op), zap.Error(err))
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// publish sends ev. Errors are logged by the publisher and ignored here.
func (b base) publish(ctx context.Context, ev queue.ParcelEvent) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = b.now()
	}
	_ = b.events.Publish(ctx, ev)
}

// run executes a multi-step write, inside one transaction when configured.
func (b base) run(ctx context.Context, fn func(ctx context.Context, st *store.Store) error) error {
	return b.st.Run(ctx, b.atomic, fn)
}

func sameEmail(a, b string) bool {
	return normalizeEmail(a) == normalizeEmail(b)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
