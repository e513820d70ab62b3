package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestPgxLogger_FailedQueryCarriesKind(t *testing.T) {
	var buf bytes.Buffer
	l := newPgxLogger(zerolog.New(&buf), nil)

	data := map[string]any{
		"sql":  "INSERT INTO users (email) VALUES ($1)",
		"args": []any{"a@b.c"},
		"err":  &pgconn.PgError{Code: "23505", Message: "duplicate key value"},
		"time": "1ms",
	}
	l.Log(context.Background(), tracelog.LogLevelError, "Exec", data)

	out := decodeLine(t, &buf)
	assert.Equal(t, "error", out["level"])
	assert.Equal(t, "pgx", out["component"])
	assert.Equal(t, "duplicate_entry", out["kind"])
	assert.Equal(t, "INSERT INTO users (email) VALUES ($1)", out["sql"])
	assert.Equal(t, "1ms", out["time"])
	assert.NotContains(t, out, "args")

	// the caller's map is left intact
	assert.Len(t, data, 4)
}

func TestPgxLogger_UsesConfiguredClassifier(t *testing.T) {
	var buf bytes.Buffer
	c := repository.NewClassifier(repository.WithoutDefaults())
	l := newPgxLogger(zerolog.New(&buf), c)

	err := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	l.Log(context.Background(), tracelog.LogLevelError, "Exec", map[string]any{"err": err})

	// the guarded handle reports the same kind
	out := decodeLine(t, &buf)
	assert.Equal(t, c.Classify(err).Kind.String(), out["kind"])
	assert.Equal(t, "persistence_failure", out["kind"])
}

func TestPgxLogger_ArgsOnlyAtTrace(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	l := newPgxLogger(zerolog.New(&buf).Level(zerolog.TraceLevel), nil)

	l.Log(context.Background(), tracelog.LogLevelTrace, "Query", map[string]any{
		"sql":  "SELECT 1",
		"args": []any{1},
	})

	out := decodeLine(t, &buf)
	assert.Equal(t, "trace", out["level"])
	assert.Contains(t, out, "args")
}

func TestPgxLogger_NoneIsSilent(t *testing.T) {
	var buf bytes.Buffer
	newPgxLogger(zerolog.New(&buf), nil).Log(context.Background(), tracelog.LogLevelNone, "x", nil)
	assert.Zero(t, buf.Len())
}

func TestTraceLevel(t *testing.T) {
	assert.Equal(t, tracelog.LogLevelTrace, traceLevel(zerolog.TraceLevel))
	assert.Equal(t, tracelog.LogLevelDebug, traceLevel(zerolog.DebugLevel))
	assert.Equal(t, tracelog.LogLevelInfo, traceLevel(zerolog.InfoLevel))
	assert.Equal(t, tracelog.LogLevelWarn, traceLevel(zerolog.WarnLevel))
	assert.Equal(t, tracelog.LogLevelError, traceLevel(zerolog.ErrorLevel))
}
