// Package sqldb guards database/sql handles so every failure surfaces as a repository.Error,
// whichever driver (lib/pq, pgx stdlib, mysql, sqlite) produced it.
package sqldb

import (
	"context"
	"database/sql"

	"github.com/maxviazov/persistence-guard/internal/repository"
)

// Beginner is the surface shared by *sql.DB and *sql.Conn.
type Beginner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	PingContext(ctx context.Context) error
}

// Querier is implemented by both *DB and *Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *Row
	PrepareContext(ctx context.Context, query string) (*Stmt, error)
}

// DB forwards to the wrapped handle and normalizes every failure, including the
// deferred ones surfaced later by Rows, Row, Result and Tx.Commit.
type DB struct {
	h Beginner
	c *repository.Classifier
}

// Wrap guards h. A nil classifier selects repository.Default(). The caller keeps ownership of h.
func Wrap(h Beginner, c *repository.Classifier) *DB {
	if c == nil {
		c = repository.Default()
	}
	return &DB{h: h, c: c}
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return execResult(db.c)(db.h.ExecContext(ctx, query, args...))
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	return queryRows(db.c)(db.h.QueryContext(ctx, query, args...))
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	return &Row{r: db.h.QueryRowContext(ctx, query, args...), c: db.c}
}

func (db *DB) PrepareContext(ctx context.Context, query string) (*Stmt, error) {
	s, err := db.h.PrepareContext(ctx, query)
	if err != nil {
		return nil, db.c.Normalize(err)
	}
	return &Stmt{s: s, c: db.c}, nil
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.h.BeginTx(ctx, opts)
	if err != nil {
		return nil, db.c.Normalize(err)
	}
	return &Tx{tx: tx, c: db.c}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.c.Normalize(db.h.PingContext(ctx))
}

// Tx is a guarded *sql.Tx.
type Tx struct {
	tx *sql.Tx
	c  *repository.Classifier
}

func (t *Tx) Commit() error   { return t.c.Normalize(t.tx.Commit()) }
func (t *Tx) Rollback() error { return t.c.Normalize(t.tx.Rollback()) }

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return execResult(t.c)(t.tx.ExecContext(ctx, query, args...))
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	return queryRows(t.c)(t.tx.QueryContext(ctx, query, args...))
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	return &Row{r: t.tx.QueryRowContext(ctx, query, args...), c: t.c}
}

func (t *Tx) PrepareContext(ctx context.Context, query string) (*Stmt, error) {
	s, err := t.tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, t.c.Normalize(err)
	}
	return &Stmt{s: s, c: t.c}, nil
}

// StmtContext returns a transaction-specific copy of a statement prepared on the DB.
func (t *Tx) StmtContext(ctx context.Context, stmt *Stmt) *Stmt {
	return &Stmt{s: t.tx.StmtContext(ctx, stmt.s), c: t.c}
}

var (
	_ Querier           = (*DB)(nil)
	_ Querier           = (*Tx)(nil)
	_ repository.Pinger = (*DB)(nil)
)
