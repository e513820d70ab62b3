package probe

import (
	"context"
	"strconv"
	"strings"

	"github.com/maxviazov/persistence-guard/internal/repository/postgres"
	"github.com/maxviazov/persistence-guard/internal/repository/sqldb"
)

// Store is the tiny repository the probe drives. Implementations only go through
// guarded handles, so every error they return is already normalized.
type Store interface {
	Insert(ctx context.Context, id, label string) error
	Get(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// SQLStore implements Store over a guarded database/sql handle.
type SQLStore struct {
	db      *sqldb.DB
	dollars bool
}

// NewSQLStore picks the placeholder style from the driver: $n for postgres drivers, ? otherwise.
func NewSQLStore(db *sqldb.DB, driver string) *SQLStore {
	return &SQLStore{db: db, dollars: driver == "pgx" || driver == "postgres"}
}

func (s *SQLStore) bind(query string) string {
	if !s.dollars {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Insert(ctx context.Context, id, label string) error {
	_, err := sqldb.QuerierFrom(ctx, s.db).ExecContext(ctx,
		s.bind(`INSERT INTO guard_probe_entries (id, label) VALUES (?, ?)`), id, label)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (string, error) {
	var label string
	err := sqldb.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		s.bind(`SELECT label FROM guard_probe_entries WHERE id = ?`), id).Scan(&label)
	return label, err
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := sqldb.QuerierFrom(ctx, s.db).ExecContext(ctx,
		s.bind(`DELETE FROM guard_probe_entries WHERE id = ?`), id)
	return err
}

// PgxStore implements Store over a guarded pgx handle.
type PgxStore struct{ db *postgres.DB }

func NewPgxStore(db *postgres.DB) *PgxStore { return &PgxStore{db: db} }

func (s *PgxStore) Insert(ctx context.Context, id, label string) error {
	_, err := postgres.QuerierFrom(ctx, s.db).Exec(ctx,
		`INSERT INTO guard_probe_entries (id, label) VALUES ($1, $2)`, id, label)
	return err
}

func (s *PgxStore) Get(ctx context.Context, id string) (string, error) {
	var label string
	err := postgres.QuerierFrom(ctx, s.db).QueryRow(ctx,
		`SELECT label FROM guard_probe_entries WHERE id = $1`, id).Scan(&label)
	return label, err
}

func (s *PgxStore) Delete(ctx context.Context, id string) error {
	_, err := postgres.QuerierFrom(ctx, s.db).Exec(ctx,
		`DELETE FROM guard_probe_entries WHERE id = $1`, id)
	return err
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*PgxStore)(nil)
)
