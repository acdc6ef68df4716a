package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

const riderColumns = `id, name, email, district, status, work_status, created_at, details`

// RiderRepo persists rider applications and their workload.
type RiderRepo struct {
	db DBTX
}

func NewRiderRepo(db DBTX) *RiderRepo { return &RiderRepo{db: db} }

func (r *RiderRepo) Insert(ctx context.Context, rd *model.Rider) (string, error) {
	details, err := encodeExtra(rd.Extra)
	if err != nil {
		return "", err
	}
	id := newID()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO riders (`+riderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rd.Name, normalizeEmail(rd.Email), rd.District, rd.Status, rd.WorkStatus, rd.CreatedAt.UTC(), details)
	if err != nil {
		return "", err
	}
	rd.ID = id
	return id, nil
}

func (r *RiderRepo) Get(ctx context.Context, id string) (*model.Rider, error) {
	rd, err := scanRider(r.db.QueryRowContext(ctx, `SELECT `+riderColumns+` FROM riders WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return rd, nil
}

// List returns riders matching f, oldest application first.
func (r *RiderRepo) List(ctx context.Context, f store.RiderFilter) ([]*model.Rider, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.District != "" {
		where = append(where, "district = ?")
		args = append(args, f.District)
	}
	q := `SELECT ` + riderColumns + ` FROM riders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Rider{}
	for rows.Next() {
		rd, err := scanRider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RiderRepo) SetStatus(ctx context.Context, id string, s model.RiderStatus) (store.UpdateResult, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE riders SET status = ? WHERE id = ?`, s, id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

func (r *RiderRepo) SetWorkStatus(ctx context.Context, id string, s model.WorkStatus) (store.UpdateResult, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE riders SET work_status = ? WHERE id = ?`, s, id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

func scanRider(s rowScanner) (*model.Rider, error) {
	var (
		rd      model.Rider
		details sql.NullString
	)
	if err := s.Scan(&rd.ID, &rd.Name, &rd.Email, &rd.District, &rd.Status, &rd.WorkStatus,
		&rd.CreatedAt, &details); err != nil {
		return nil, err
	}
	extra, err := decodeExtra(details)
	if err != nil {
		return nil, err
	}
	rd.CreatedAt = rd.CreatedAt.UTC()
	rd.Extra = extra
	return &rd, nil
}
