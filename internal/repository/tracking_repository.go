package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/fastshift/internal/model"
)

// TrackingRepo appends and reads tracking events. Rows are never updated.
type TrackingRepo struct {
	db DBTX
}

func NewTrackingRepo(db DBTX) *TrackingRepo { return &TrackingRepo{db: db} }

func (r *TrackingRepo) Append(ctx context.Context, e *model.TrackingEvent) (string, error) {
	details, err := encodeExtra(e.Extra)
	if err != nil {
		return "", err
	}
	id := newID()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO trackings (id, tracking_id, status, event_at, details) VALUES (?, ?, ?, ?, ?)`,
		id, e.TrackingID, e.Status, e.Timestamp.UTC(), details); err != nil {
		return "", err
	}
	e.ID = id
	return id, nil
}

// List returns the events of trackingID oldest first. Insertion order breaks
// timestamp ties.
func (r *TrackingRepo) List(ctx context.Context, trackingID string) ([]*model.TrackingEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tracking_id, status, event_at, details FROM trackings
		 WHERE tracking_id = ? ORDER BY event_at ASC, seq ASC`, trackingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.TrackingEvent{}
	for rows.Next() {
		var (
			e       model.TrackingEvent
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TrackingID, &e.Status, &e.Timestamp, &details); err != nil {
			return nil, err
		}
		if e.Extra, err = decodeExtra(details); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
