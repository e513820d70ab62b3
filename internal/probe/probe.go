// Package probe checks, against a live backend, that guarded handles report a unique
// violation as a duplicate entry and everything else as a persistence failure.
package probe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/rs/zerolog"
)

// Step is one observed operation and the normalized kind it produced.
type Step struct {
	Name       string `json:"name"`
	Want       string `json:"want"`
	Got        string `json:"got,omitempty"`
	Normalized bool   `json:"normalized"`
	Err        string `json:"error,omitempty"`
}

func (s Step) OK() bool { return s.Normalized && s.Got == s.Want }

// Report collects the steps of a single probe run.
type Report struct {
	ID    string `json:"id"`
	Steps []Step `json:"steps"`
}

// OK is true when every step produced the expected kind.
func (r Report) OK() bool {
	if len(r.Steps) == 0 {
		return false
	}
	for _, s := range r.Steps {
		if !s.OK() {
			return false
		}
	}
	return true
}

// Run seeds one row, collides with it directly and inside a transaction, and reads a
// missing row. A failing seed aborts the run; unexpected kinds only mark the report.
func Run(ctx context.Context, store Store, tx repository.TxManager, logger zerolog.Logger) (Report, error) {
	id := uuid.NewString()
	report := Report{ID: id}

	if err := store.Insert(ctx, id, "seed"); err != nil {
		return report, fmt.Errorf("seed insert: %w", err)
	}
	defer func() {
		if err := store.Delete(context.Background(), id); err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("probe cleanup failed")
		}
	}()

	report.add(logger, "duplicate_insert", repository.KindDuplicateEntry,
		store.Insert(ctx, id, "again"))

	report.add(logger, "duplicate_insert_in_tx", repository.KindDuplicateEntry,
		tx.WithinTx(ctx, func(ctx context.Context) error {
			return store.Insert(ctx, id, "again-in-tx")
		}))

	_, err := store.Get(ctx, uuid.NewString())
	report.add(logger, "missing_row", repository.KindPersistenceFailure, err)

	return report, nil
}

func (r *Report) add(logger zerolog.Logger, name string, want repository.Kind, err error) {
	s := Step{Name: name, Want: want.String()}
	if err != nil {
		s.Err = err.Error()
		if kind, ok := repository.KindOf(err); ok {
			s.Normalized = true
			s.Got = kind.String()
		}
	}
	r.Steps = append(r.Steps, s)

	event := logger.Info()
	if !s.OK() {
		event = logger.Warn()
	}
	event.Str("step", s.Name).
		Str("want", s.Want).
		Str("got", s.Got).
		Bool("normalized", s.Normalized).
		Str("error", s.Err).
		Msg("probe step")
}
