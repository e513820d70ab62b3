// Package postgres guards pgx handles so every failure surfaces as a repository.Error.
// The one exception is Tx.LargeObjects, which hands back pgx's own large object API
// and its unwrapped errors.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maxviazov/persistence-guard/internal/repository"
)

// Handle is the pgx surface shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Handle interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Querier is the minimal executor used by repositories; both *DB and *Tx implement it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB forwards every call to the wrapped handle and normalizes failures.
// It adds no locking: concurrency guarantees are those of the wrapped handle.
type DB struct {
	h Handle
	c *repository.Classifier
}

// Wrap guards h. A nil classifier selects repository.Default(). The caller keeps ownership of h.
func Wrap(h Handle, c *repository.Classifier) *DB {
	if c == nil {
		c = repository.Default()
	}
	return &DB{h: h, c: c}
}

func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := db.h.Begin(ctx)
	if err != nil {
		return nil, db.c.Normalize(err)
	}
	return &Tx{tx: tx, c: db.c}, nil
}

func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := db.h.Exec(ctx, sql, args...)
	return tag, db.c.Normalize(err)
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	r, err := db.h.Query(ctx, sql, args...)
	return wrapRows(r, db.c), db.c.Normalize(err)
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &row{r: db.h.QueryRow(ctx, sql, args...), c: db.c}
}

func (db *DB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return &batchResults{br: db.h.SendBatch(ctx, b), c: db.c}
}

func (db *DB) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	n, err := db.h.CopyFrom(ctx, tableName, columnNames, rowSrc)
	return n, db.c.Normalize(err)
}

// Ping forwards to the wrapped handle when it can ping; pgx.Tx cannot, so it reports nil.
func (db *DB) Ping(ctx context.Context) error {
	p, ok := db.h.(repository.Pinger)
	if !ok {
		return nil
	}
	return db.c.Normalize(p.Ping(ctx))
}

var (
	_ Handle            = (*DB)(nil)
	_ Querier           = (*DB)(nil)
	_ repository.Pinger = (*DB)(nil)
)
