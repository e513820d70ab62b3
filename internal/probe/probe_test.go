package probe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStore_Bind(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"pgx", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"postgres", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"mysql", "INSERT INTO t (a, b) VALUES (?, ?)"},
		{"sqlite", "INSERT INTO t (a, b) VALUES (?, ?)"},
	}
	for _, test := range tests {
		t.Run(test.driver, func(t *testing.T) {
			s := NewSQLStore(nil, test.driver)
			assert.Equal(t, test.want, s.bind("INSERT INTO t (a, b) VALUES (?, ?)"))
		})
	}
}

func TestDialect(t *testing.T) {
	for driver, want := range map[string]string{
		"pgx":      "postgres",
		"postgres": "postgres",
		"mysql":    "mysql",
		"sqlite":   "sqlite3",
	} {
		got, err := Dialect(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Dialect("oracle")
	assert.Error(t, err)
}

// memStore reports whatever errors it is told to; it does not normalize anything itself.
type memStore struct {
	rows      map[string]string
	insertErr error
	getErr    error
	seedErr   error
	deleted   []string
}

func (m *memStore) Insert(ctx context.Context, id, label string) error {
	if _, ok := m.rows[id]; ok {
		return m.insertErr
	}
	if m.seedErr != nil {
		return m.seedErr
	}
	m.rows[id] = label
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (string, error) {
	if v, ok := m.rows[id]; ok {
		return v, nil
	}
	return "", m.getErr
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.rows, id)
	return nil
}

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

func TestRun_Report(t *testing.T) {
	ctx := context.Background()

	t.Run("normalized store is ok", func(t *testing.T) {
		store := &memStore{
			rows:      map[string]string{},
			insertErr: repository.Normalize(errors.New("duplicate key")),
			getErr:    repository.Normalize(errors.New("no rows")),
		}
		var buf bytes.Buffer
		report, err := Run(ctx, store, passTx{}, zerolog.New(&buf))
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, []string{report.ID}, store.deleted)
		assert.Contains(t, buf.String(), `"step":"duplicate_insert_in_tx"`)
	})

	t.Run("raw driver errors are flagged", func(t *testing.T) {
		store := &memStore{
			rows:      map[string]string{},
			insertErr: errors.New("duplicate key"),
			getErr:    repository.Normalize(errors.New("no rows")),
		}
		var buf bytes.Buffer
		report, err := Run(ctx, store, passTx{}, zerolog.New(&buf))
		require.NoError(t, err)
		assert.False(t, report.OK())
		require.Len(t, report.Steps, 3)
		assert.False(t, report.Steps[0].Normalized)
		assert.Equal(t, "duplicate key", report.Steps[0].Err)
		assert.True(t, report.Steps[2].OK())
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("wrong kind is flagged", func(t *testing.T) {
		store := &memStore{
			rows:      map[string]string{},
			insertErr: repository.Normalize(errors.New("timeout")),
			getErr:    repository.Normalize(errors.New("no rows")),
		}
		report, err := Run(ctx, store, passTx{}, zerolog.Nop())
		require.NoError(t, err)
		assert.False(t, report.Steps[0].OK())
		assert.Equal(t, "persistence_failure", report.Steps[0].Got)
		assert.Equal(t, "duplicate_entry", report.Steps[0].Want)
	})

	t.Run("failed seed aborts", func(t *testing.T) {
		store := &memStore{rows: map[string]string{}, seedErr: errors.New("read-only")}
		report, err := Run(ctx, store, passTx{}, zerolog.Nop())
		assert.Error(t, err)
		assert.Empty(t, report.Steps)
		assert.False(t, report.OK())
		assert.Empty(t, store.deleted)
	})
}
