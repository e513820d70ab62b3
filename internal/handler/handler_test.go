package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/persistence-guard/internal/handler"
	"github.com/maxviazov/persistence-guard/internal/probe"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/maxviazov/persistence-guard/internal/repository/sqldb"
	"github.com/maxviazov/persistence-guard/pkg/response"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPinger implements repository.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func newEngine(t *testing.T, p repository.Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw, err := sqldb.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, probe.Migrate(context.Background(), raw, "sqlite", zerolog.Nop()))

	db := sqldb.Wrap(raw, nil)
	if p == nil {
		p = db
	}
	r := gin.New()
	handler.Register(r, p, probe.NewSQLStore(db, "sqlite"), sqldb.NewTxManager(db), zerolog.Nop())
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorPayload {
	t.Helper()
	var p response.ErrorPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		pinger repository.Pinger
		path   string
		status int
	}{
		{"guarded sqlite", nil, "/ready", http.StatusOK},
		{"versioned path", nil, handler.APIV1Prefix + "/health/ready", http.StatusOK},
		{"db down", stubPinger{err: errors.New("db down")}, "/ready", http.StatusServiceUnavailable},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := do(newEngine(t, test.pinger), http.MethodGet, test.path, "")
			if w.Code != test.status {
				t.Fatalf("expected status %d, got %d, body=%s", test.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestReadiness_ReportsKindOnly(t *testing.T) {
	w := do(newEngine(t, stubPinger{err: errors.New("dial tcp: connection refused")}), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "persistence_failure")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestLiveness_OK(t *testing.T) {
	w := do(newEngine(t, nil), http.MethodGet, "/live", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestEntries_DuplicateIsConflict(t *testing.T) {
	r := newEngine(t, nil)
	path := handler.APIV1Prefix + "/entries"

	w := do(r, http.MethodPost, path, `{"id":"e-1","label":"first"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, path, `{"id":"e-1","label":"second"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_entry", decodeError(t, w).Error)
	assert.NotContains(t, w.Body.String(), "UNIQUE")

	w = do(r, http.MethodGet, path+"/e-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"e-1","label":"first"}`, w.Body.String())
}

func TestEntries_GeneratedID(t *testing.T) {
	r := newEngine(t, nil)
	w := do(r, http.MethodPost, handler.APIV1Prefix+"/entries", `{"label":"anon"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got["id"], 36)
}

func TestEntries_InvalidInput(t *testing.T) {
	r := newEngine(t, nil)
	w := do(r, http.MethodPost, handler.APIV1Prefix+"/entries", `{"id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", decodeError(t, w).Error)
}

func TestEntries_MissingIsPersistenceFailure(t *testing.T) {
	r := newEngine(t, nil)
	w := do(r, http.MethodGet, handler.APIV1Prefix+"/entries/nope", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "persistence_failure", decodeError(t, w).Error)
}

func TestEntries_Delete(t *testing.T) {
	r := newEngine(t, nil)
	path := handler.APIV1Prefix + "/entries"
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, path, `{"id":"d-1","label":"x"}`).Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, path+"/d-1", "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, path+"/d-1", "").Code)
}

func TestProbe_Endpoint(t *testing.T) {
	w := do(newEngine(t, nil), http.MethodPost, handler.APIV1Prefix+"/probe", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report probe.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.OK())
	assert.Len(t, report.Steps, 3)
}

func TestHealth_NotFound(t *testing.T) {
	w := do(newEngine(t, nil), http.MethodGet, "/no-such", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
