// Package store defines the storage context shared by every service: one
// repository per collection plus an optional transaction runner. Concrete
// adapters live in internal/repository (SQL) and internal/repository/mongostore.
package store

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/iliyamo/fastshift/internal/model"
)

// ErrNotFound is returned by single-document lookups that match nothing.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when an update names a delivery status
// that cannot be reached through that update.
var ErrInvalidTransition = errors.New("invalid delivery status transition")

// ErrDuplicate is returned when a unique key (user email) already exists.
var ErrDuplicate = errors.New("duplicate key")

// ErrTxUnsupported is returned by Run when an atomic run is requested from
// a store without transactions.
var ErrTxUnsupported = errors.New("transactions not supported by store")

// UpdateResult reports how many documents an update matched and changed, so
// callers can tell a no-op from a write.
type UpdateResult struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}

// ParcelSort selects the ordering of parcel listings.
type ParcelSort int

const (
	SortCreatedDesc ParcelSort = iota
	SortAssignedDesc
)

// ParcelFilter narrows a parcel listing. Zero fields do not filter.
type ParcelFilter struct {
	CreatedBy        string
	PaymentStatus    model.PaymentStatus
	DeliveryStatuses []model.DeliveryStatus
	RiderEmail       string
}

// RiderFilter narrows a rider listing. Zero fields do not filter.
type RiderFilter struct {
	Status   model.RiderStatus
	District string
}

type ParcelRepository interface {
	Insert(ctx context.Context, p *model.Parcel) (string, error)
	Get(ctx context.Context, id string) (*model.Parcel, error)
	List(ctx context.Context, f ParcelFilter, sort ParcelSort) ([]*model.Parcel, error)
	// Assign writes the rider fields and rider_assigned on a paid,
	// not_collected parcel.
	Assign(ctx context.Context, id string, a model.Assignment) (UpdateResult, error)
	// Advance moves a parcel to `to` only when it currently holds the
	// predecessor of `to`, stamping the matching timestamp.
	Advance(ctx context.Context, id string, to model.DeliveryStatus, at time.Time) (UpdateResult, error)
	MarkPaid(ctx context.Context, id string) (UpdateResult, error)
	// Cashout flips cashout_status once; a second call matches nothing.
	Cashout(ctx context.Context, id string, at time.Time) (UpdateResult, error)
	CountByDeliveryStatus(ctx context.Context) ([]model.StatusCount, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, p *model.Payment) (string, error)
	// List returns payments newest first; an empty createdBy lists all.
	List(ctx context.Context, createdBy string) ([]*model.Payment, error)
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, u *model.User) (string, error)
	TouchLogin(ctx context.Context, email string, at time.Time) (UpdateResult, error)
	SetRoleByID(ctx context.Context, id, role string) (UpdateResult, error)
	SetRoleByEmail(ctx context.Context, email, role string) (UpdateResult, error)
	// Search matches q case-insensitively against email or name.
	Search(ctx context.Context, q string, limit int) ([]*model.User, error)
}

type RiderRepository interface {
	Insert(ctx context.Context, r *model.Rider) (string, error)
	Get(ctx context.Context, id string) (*model.Rider, error)
	List(ctx context.Context, f RiderFilter) ([]*model.Rider, error)
	SetStatus(ctx context.Context, id string, s model.RiderStatus) (UpdateResult, error)
	SetWorkStatus(ctx context.Context, id string, s model.WorkStatus) (UpdateResult, error)
}

type TrackingRepository interface {
	Append(ctx context.Context, e *model.TrackingEvent) (string, error)
	// List returns the events of one tracking id oldest first.
	List(ctx context.Context, trackingID string) ([]*model.TrackingEvent, error)
}

// Transactor runs fn against a copy of the store whose repositories share
// one transaction. The transaction commits when fn returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error
}

// Store is the storage context built once at startup and injected into
// every service.
type Store struct {
	Parcels   ParcelRepository
	Payments  PaymentRepository
	Users     UserRepository
	Riders    RiderRepository
	Trackings TrackingRepository

	// Tx is nil when the backing store has no transactions.
	Tx Transactor
	// Closer releases the underlying connection; may be nil.
	Closer io.Closer
}

// Run executes fn. With atomic set the store must support transactions and
// fn sees a transaction-bound store; otherwise fn runs against s and each
// write stands on its own.
func (s *Store) Run(ctx context.Context, atomic bool, fn func(ctx context.Context, st *Store) error) error {
	if !atomic {
		return fn(ctx, s)
	}
	if s.Tx == nil {
		return ErrTxUnsupported
	}
	return s.Tx.InTx(ctx, fn)
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s.Closer == nil {
		return nil
	}
	return s.Closer.Close()
}
