package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func newID() string { return uuid.NewString() }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func encodeExtra(e model.Extra) (sql.NullString, error) {
	if len(e) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode details: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeExtra(ns sql.NullString) (model.Extra, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var e model.Extra
	if err := json.Unmarshal([]byte(ns.String), &e); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	return e, nil
}

// updated converts RowsAffected into an UpdateResult. database/sql only
// exposes one count, so matched and modified carry the same value.
func updated(res sql.Result) (store.UpdateResult, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpdateResult{}, err
	}
	return store.UpdateResult{Matched: n, Modified: n}, nil
}

// inClause renders "col IN (?,?,...)" for n values.
func inClause(col string, n int) string {
	return col + " IN (" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
}
