package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

const parcelColumns = `id, created_by, tracking_id, payment_status, delivery_status,
	assigned_rider_id, assigned_rider_email, assigned_rider_name, cashout_status,
	created_at, assigned_at, picked_at, delivered_at, cashed_out_at, details`

// ParcelRepo encapsulates all queries against the parcels table.
type ParcelRepo struct {
	db DBTX
}

// NewParcelRepo constructs a ParcelRepo on a pool or a transaction.
func NewParcelRepo(db DBTX) *ParcelRepo {
	return &ParcelRepo{db: db}
}

// Insert stores p and returns the generated id. p.ID is populated as well.
func (r *ParcelRepo) Insert(ctx context.Context, p *model.Parcel) (string, error) {
	details, err := encodeExtra(p.Extra)
	if err != nil {
		return "", err
	}
	id := newID()
	const q = `INSERT INTO parcels (` + parcelColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		id, p.CreatedBy, nullString(p.TrackingID), p.PaymentStatus, p.DeliveryStatus,
		nullString(p.AssignedRiderID), nullString(p.AssignedRiderEmail), nullString(p.AssignedRiderName),
		p.CashoutStatus, p.CreatedAt.UTC(), nullTime(p.AssignedAt), nullTime(p.PickedAt),
		nullTime(p.DeliveredAt), nullTime(p.CashedOutAt), details)
	if err != nil {
		return "", err
	}
	p.ID = id
	return id, nil
}

// Get fetches one parcel. It returns store.ErrNotFound when no row matches.
func (r *ParcelRepo) Get(ctx context.Context, id string) (*model.Parcel, error) {
	const q = `SELECT ` + parcelColumns + ` FROM parcels WHERE id = ?`
	p, err := scanParcel(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns the parcels matching f, newest first by the requested key.
func (r *ParcelRepo) List(ctx context.Context, f store.ParcelFilter, sort store.ParcelSort) ([]*model.Parcel, error) {
	var (
		where []string
		args  []any
	)
	if f.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, f.CreatedBy)
	}
	if f.PaymentStatus != "" {
		where = append(where, "payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if f.RiderEmail != "" {
		where = append(where, "assigned_rider_email = ?")
		args = append(args, f.RiderEmail)
	}
	if len(f.DeliveryStatuses) > 0 {
		where = append(where, inClause("delivery_status", len(f.DeliveryStatuses)))
		for _, s := range f.DeliveryStatuses {
			args = append(args, s)
		}
	}

	q := `SELECT ` + parcelColumns + ` FROM parcels`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	switch sort {
	case store.SortAssignedDesc:
		q += " ORDER BY assigned_at DESC, created_at DESC"
	default:
		q += " ORDER BY created_at DESC"
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Parcel{}
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Assign writes the rider fields together with rider_assigned. Only a paid
// parcel that has not been collected yet matches.
func (r *ParcelRepo) Assign(ctx context.Context, id string, a model.Assignment) (store.UpdateResult, error) {
	const q = `UPDATE parcels
	           SET delivery_status = ?, assigned_rider_id = ?, assigned_rider_email = ?,
	               assigned_rider_name = ?, assigned_at = ?
	           WHERE id = ? AND payment_status = ? AND delivery_status = ?`
	res, err := r.db.ExecContext(ctx, q,
		model.DeliveryRiderAssigned, a.RiderID, a.RiderEmail, a.RiderName, a.At.UTC(),
		id, model.PaymentPaid, model.DeliveryNotCollected)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

// Advance moves the parcel to `to` when it currently holds the predecessor
// of `to`. rider_assigned is reachable only through Assign.
func (r *ParcelRepo) Advance(ctx context.Context, id string, to model.DeliveryStatus, at time.Time) (store.UpdateResult, error) {
	from, ok := to.Predecessor()
	if !ok || to == model.DeliveryRiderAssigned {
		return store.UpdateResult{}, fmt.Errorf("%w: %s", store.ErrInvalidTransition, to)
	}
	// the column name comes from a closed set, never from input
	q := `UPDATE parcels SET delivery_status = ?, ` + to.TimestampField() + ` = ?
	      WHERE id = ? AND delivery_status = ?`
	res, err := r.db.ExecContext(ctx, q, to, at.UTC(), id, from)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

// MarkPaid flips payment_status to paid.
func (r *ParcelRepo) MarkPaid(ctx context.Context, id string) (store.UpdateResult, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parcels SET payment_status = ? WHERE id = ?`, model.PaymentPaid, id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

// Cashout marks the rider payout for a parcel. A parcel already cashed out
// does not match.
func (r *ParcelRepo) Cashout(ctx context.Context, id string, at time.Time) (store.UpdateResult, error) {
	const q = `UPDATE parcels SET cashout_status = ?, cashed_out_at = ?
	           WHERE id = ? AND cashout_status <> ?`
	res, err := r.db.ExecContext(ctx, q, model.CashoutCompleted, at.UTC(), id, model.CashoutCompleted)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

// CountByDeliveryStatus groups all parcels by delivery status.
func (r *ParcelRepo) CountByDeliveryStatus(ctx context.Context) ([]model.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT delivery_status, COUNT(*) FROM parcels GROUP BY delivery_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.StatusCount{}
	for rows.Next() {
		var sc model.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Delete removes a parcel and returns the number of rows deleted.
func (r *ParcelRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parcels WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanParcel(s rowScanner) (*model.Parcel, error) {
	var (
		p                                 model.Parcel
		trackingID, riderID, riderEmail   sql.NullString
		riderName, details                sql.NullString
		assignedAt, pickedAt, deliveredAt sql.NullTime
		cashedOutAt                       sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.CreatedBy, &trackingID, &p.PaymentStatus, &p.DeliveryStatus,
		&riderID, &riderEmail, &riderName, &p.CashoutStatus,
		&p.CreatedAt, &assignedAt, &pickedAt, &deliveredAt, &cashedOutAt, &details); err != nil {
		return nil, err
	}
	extra, err := decodeExtra(details)
	if err != nil {
		return nil, err
	}
	p.TrackingID = trackingID.String
	p.AssignedRiderID = riderID.String
	p.AssignedRiderEmail = riderEmail.String
	p.AssignedRiderName = riderName.String
	p.CreatedAt = p.CreatedAt.UTC()
	p.AssignedAt = timePtr(assignedAt)
	p.PickedAt = timePtr(pickedAt)
	p.DeliveredAt = timePtr(deliveredAt)
	p.CashedOutAt = timePtr(cashedOutAt)
	p.Extra = extra
	return &p, nil
}
