package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maxviazov/persistence-guard/internal/repository"
)

// Tx is a guarded pgx.Tx. Commit is where deferred constraint failures usually show up.
// LargeObjects is not guarded: errors from its methods reach callers unnormalized.
type Tx struct {
	tx pgx.Tx
	c  *repository.Classifier
}

// Begin starts a pseudo nested transaction (savepoint), guarded the same way.
func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.tx.Begin(ctx)
	if err != nil {
		return nil, t.c.Normalize(err)
	}
	return &Tx{tx: tx, c: t.c}, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.c.Normalize(t.tx.Commit(ctx))
}

func (t *Tx) Rollback(ctx context.Context) error {
	return t.c.Normalize(t.tx.Rollback(ctx))
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	n, err := t.tx.CopyFrom(ctx, tableName, columnNames, rowSrc)
	return n, t.c.Normalize(err)
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return &batchResults{br: t.tx.SendBatch(ctx, b), c: t.c}
}

// LargeObjects is returned as-is; its methods talk to the server directly and
// return raw pgx errors.
func (t *Tx) LargeObjects() pgx.LargeObjects {
	return t.tx.LargeObjects()
}

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	sd, err := t.tx.Prepare(ctx, name, sql)
	return sd, t.c.Normalize(err)
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	return tag, t.c.Normalize(err)
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	r, err := t.tx.Query(ctx, sql, args...)
	return wrapRows(r, t.c), t.c.Normalize(err)
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &row{r: t.tx.QueryRow(ctx, sql, args...), c: t.c}
}

func (t *Tx) Conn() *pgx.Conn {
	return t.tx.Conn()
}

var (
	_ pgx.Tx  = (*Tx)(nil)
	_ Handle  = (*Tx)(nil)
	_ Querier = (*Tx)(nil)
)
