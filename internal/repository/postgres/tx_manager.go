package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/maxviazov/persistence-guard/internal/repository"
)

type txKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
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

// NewTxManager runs units of work on the guarded handle. A unit nested in another
// WithinTx becomes a savepoint of the outer transaction.
func NewTxManager(db *DB) repository.TxManager { return &txManager{db: db} }

func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	var (
		tx  pgx.Tx
		err error
	)
	if outer, ok := txFrom(ctx); ok {
		tx, err = outer.Begin(ctx)
	} else {
		tx, err = m.db.Begin(ctx)
	}
	if err != nil {
		return err
	}
	defer func() {
		// no-op once committed; ignore errors if context canceled
		_ = tx.Rollback(context.Background())
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ensure interfaces are satisfied at compile time
var _ repository.TxManager = (*txManager)(nil)
