package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maxviazov/persistence-guard/internal/repository"
)

// rows guards pgx.Rows. pgx reports most query failures here rather than from Query itself.
type rows struct {
	r pgx.Rows
	c *repository.Classifier
}

func wrapRows(r pgx.Rows, c *repository.Classifier) pgx.Rows {
	if r == nil {
		return nil
	}
	return &rows{r: r, c: c}
}

func (r *rows) Close()                                       { r.r.Close() }
func (r *rows) Err() error                                   { return r.c.Normalize(r.r.Err()) }
func (r *rows) CommandTag() pgconn.CommandTag                { return r.r.CommandTag() }
func (r *rows) FieldDescriptions() []pgconn.FieldDescription { return r.r.FieldDescriptions() }
func (r *rows) Next() bool                                   { return r.r.Next() }
func (r *rows) Scan(dest ...any) error                       { return r.c.Normalize(r.r.Scan(dest...)) }
func (r *rows) RawValues() [][]byte                          { return r.r.RawValues() }
func (r *rows) Conn() *pgx.Conn                              { return r.r.Conn() }

func (r *rows) Values() ([]any, error) {
	v, err := r.r.Values()
	return v, r.c.Normalize(err)
}

// row guards pgx.Row; the deferred query error is only visible through Scan.
type row struct {
	r pgx.Row
	c *repository.Classifier
}

func (r *row) Scan(dest ...any) error { return r.c.Normalize(r.r.Scan(dest...)) }

type batchResults struct {
	br pgx.BatchResults
	c  *repository.Classifier
}

func (b *batchResults) Exec() (pgconn.CommandTag, error) {
	tag, err := b.br.Exec()
	return tag, b.c.Normalize(err)
}

func (b *batchResults) Query() (pgx.Rows, error) {
	r, err := b.br.Query()
	return wrapRows(r, b.c), b.c.Normalize(err)
}

func (b *batchResults) QueryRow() pgx.Row {
	return &row{r: b.br.QueryRow(), c: b.c}
}

func (b *batchResults) Close() error { return b.c.Normalize(b.br.Close()) }

var (
	_ pgx.Rows         = (*rows)(nil)
	_ pgx.Row          = (*row)(nil)
	_ pgx.BatchResults = (*batchResults)(nil)
)
