package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/fastshift/internal/model"
)

// PaymentRepo persists payment records.
type PaymentRepo struct {
	db DBTX
}

func NewPaymentRepo(db DBTX) *PaymentRepo { return &PaymentRepo{db: db} }

// Insert stores p and returns its generated id.
func (r *PaymentRepo) Insert(ctx context.Context, p *model.Payment) (string, error) {
	id := newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, parcel_id, amount, transaction_id, created_by, payment_method, paid_at_string, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.ParcelID, p.Amount, p.TransactionID, p.CreatedBy, nullString(p.PaymentMethod),
		p.PaidAtString, p.PaidAt.UTC())
	if err != nil {
		return "", err
	}
	p.ID = id
	return id, nil
}

// List returns payments newest first. An empty createdBy lists every payment.
func (r *PaymentRepo) List(ctx context.Context, createdBy string) ([]*model.Payment, error) {
	q := `SELECT id, parcel_id, amount, transaction_id, created_by, payment_method, paid_at_string, paid_at
	      FROM payments`
	var args []any
	if createdBy != "" {
		q += " WHERE created_by = ?"
		args = append(args, createdBy)
	}
	q += " ORDER BY paid_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Payment{}
	for rows.Next() {
		var (
			p      model.Payment
			method sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ParcelID, &p.Amount, &p.TransactionID, &p.CreatedBy,
			&method, &p.PaidAtString, &p.PaidAt); err != nil {
			return nil, err
		}
		p.PaymentMethod = method.String
		p.PaidAt = p.PaidAt.UTC()
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
