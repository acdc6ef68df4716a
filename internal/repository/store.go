package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/fastshift/internal/store"
)

// NewStore wires every SQL repository onto db and returns the storage
// context. The returned store supports transactions and owns db.
func NewStore(db *sql.DB) *store.Store {
	st := bind(db)
	st.Tx = txRunner{db: db}
	st.Closer = db
	return st
}

func bind(db DBTX) *store.Store {
	return &store.Store{
		Parcels:   NewParcelRepo(db),
		Payments:  NewPaymentRepo(db),
		Users:     NewUserRepo(db),
		Riders:    NewRiderRepo(db),
		Trackings: NewTrackingRepo(db),
	}
}

type txRunner struct{ db *sql.DB }

// InTx runs fn on repositories bound to one transaction, committing when fn
// succeeds and rolling back otherwise.
func (t txRunner) InTx(ctx context.Context, fn func(ctx context.Context, tx *store.Store) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
