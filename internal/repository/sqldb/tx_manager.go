package sqldb

import (
	"context"

	"github.com/maxviazov/persistence-guard/internal/repository"
)

type txKey struct{}

func withTx(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	return tx, ok && tx != nil
}

// QuerierFrom returns the transaction stored in ctx by WithinTx, or db outside of one.
func QuerierFrom(ctx context.Context, db *DB) Querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return db
}

type txManager struct{ db *DB }

// NewTxManager runs units of work on the guarded handle. database/sql has no savepoints,
// so a nested WithinTx joins the outer transaction.
func NewTxManager(db *DB) repository.TxManager { return &txManager{db: db} }

func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		// sql.ErrTxDone after a successful commit is expected here
		_ = tx.Rollback()
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

var _ repository.TxManager = (*txManager)(nil)
