package sqldb

import (
	"context"
	"database/sql"

	"github.com/maxviazov/persistence-guard/internal/repository"
)

// Rows is a guarded *sql.Rows. Errors hit mid-iteration are reported by Err.
type Rows struct {
	r *sql.Rows
	c *repository.Classifier
}

func (r *Rows) Next() bool             { return r.r.Next() }
func (r *Rows) NextResultSet() bool    { return r.r.NextResultSet() }
func (r *Rows) Scan(dest ...any) error { return r.c.Normalize(r.r.Scan(dest...)) }
func (r *Rows) Err() error             { return r.c.Normalize(r.r.Err()) }
func (r *Rows) Close() error           { return r.c.Normalize(r.r.Close()) }

func (r *Rows) Columns() ([]string, error) {
	cols, err := r.r.Columns()
	return cols, r.c.Normalize(err)
}

func (r *Rows) ColumnTypes() ([]*sql.ColumnType, error) {
	ct, err := r.r.ColumnTypes()
	return ct, r.c.Normalize(err)
}

// Row is a guarded *sql.Row. sql.ErrNoRows comes back as a persistence failure that
// still satisfies errors.Is(err, sql.ErrNoRows).
type Row struct {
	r *sql.Row
	c *repository.Classifier
}

func (r *Row) Scan(dest ...any) error { return r.c.Normalize(r.r.Scan(dest...)) }
func (r *Row) Err() error             { return r.c.Normalize(r.r.Err()) }

// Stmt is a guarded *sql.Stmt.
type Stmt struct {
	s *sql.Stmt
	c *repository.Classifier
}

func (s *Stmt) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	return execResult(s.c)(s.s.ExecContext(ctx, args...))
}

func (s *Stmt) QueryContext(ctx context.Context, args ...any) (*Rows, error) {
	return queryRows(s.c)(s.s.QueryContext(ctx, args...))
}

func (s *Stmt) QueryRowContext(ctx context.Context, args ...any) *Row {
	return &Row{r: s.s.QueryRowContext(ctx, args...), c: s.c}
}

func (s *Stmt) Close() error { return s.c.Normalize(s.s.Close()) }

type result struct {
	r sql.Result
	c *repository.Classifier
}

func (r result) LastInsertId() (int64, error) {
	id, err := r.r.LastInsertId()
	return id, r.c.Normalize(err)
}

func (r result) RowsAffected() (int64, error) {
	n, err := r.r.RowsAffected()
	return n, r.c.Normalize(err)
}

func execResult(c *repository.Classifier) func(sql.Result, error) (sql.Result, error) {
	return func(res sql.Result, err error) (sql.Result, error) {
		if err != nil {
			return nil, c.Normalize(err)
		}
		return result{r: res, c: c}, nil
	}
}

func queryRows(c *repository.Classifier) func(*sql.Rows, error) (*Rows, error) {
	return func(r *sql.Rows, err error) (*Rows, error) {
		if err != nil {
			return nil, c.Normalize(err)
		}
		return &Rows{r: r, c: c}, nil
	}
}
