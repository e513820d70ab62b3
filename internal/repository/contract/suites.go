package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/maxviazov/persistence-guard/internal/probe"
	"github.com/maxviazov/persistence-guard/internal/repository"
)

// StoreFactory returns a probe.Store built on guarded handles only.
type StoreFactory func(t *testing.T) (store probe.Store, tx repository.TxManager, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// RunGuardContract checks that a guarded backend surfaces only the two normalized kinds.
func RunGuardContract(t *testing.T, makeStore StoreFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		store, _, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := store.Insert(ctx, "a-1", "first"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		got, err := store.Get(ctx, "a-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != "first" {
			t.Fatalf("mismatch: %q", got)
		}
	})

	t.Run("duplicate_insert_is_duplicate_entry", func(t *testing.T) {
		store, _, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := store.Insert(ctx, "dup", "first"); err != nil {
			t.Fatalf("seed: %v", err)
		}
		err := store.Insert(ctx, "dup", "second")
		if !errors.Is(err, repository.ErrDuplicateEntry) {
			t.Fatalf("expected ErrDuplicateEntry, got %v", err)
		}
		var ne *repository.Error
		if !errors.As(err, &ne) || ne.Cause == nil {
			t.Fatalf("expected *repository.Error carrying the driver cause, got %#v", err)
		}
	})

	t.Run("get_missing_is_persistence_failure", func(t *testing.T) {
		store, _, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		_, err := store.Get(context.Background(), "nope")
		if !errors.Is(err, repository.ErrPersistenceFailure) {
			t.Fatalf("expected ErrPersistenceFailure, got %v", err)
		}
		if repository.IsDuplicate(err) {
			t.Fatalf("missing row must not be a duplicate: %v", err)
		}
	})

	t.Run("duplicate_inside_tx_is_normalized", func(t *testing.T) {
		store, tx, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := store.Insert(ctx, "tx-dup", "first"); err != nil {
			t.Fatalf("seed: %v", err)
		}
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			return store.Insert(ctx, "tx-dup", "second")
		})
		if !errors.Is(err, repository.ErrDuplicateEntry) {
			t.Fatalf("expected ErrDuplicateEntry from tx, got %v", err)
		}
	})

	t.Run("commit_on_nil_error", func(t *testing.T) {
		store, tx, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			return store.Insert(ctx, "tx-commit", "kept")
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := store.Get(ctx, "tx-commit"); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error_returns_fn_error", func(t *testing.T) {
		store, tx, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		errMarker := assertErr("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := store.Insert(ctx, "tx-rollback", "gone"); err != nil {
				return err
			}
			return errMarker
		})
		if err != errMarker {
			t.Fatalf("expected marker error untouched, got %v", err)
		}
		if _, err := store.Get(ctx, "tx-rollback"); !errors.Is(err, repository.ErrPersistenceFailure) {
			t.Fatalf("expected rolled back row to be missing, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// assertErr builds a sentinel error without importing errors to keep helpers local.
func assertErr(msg string) error { return &sentinel{msg} }

type sentinel struct{ s string }

func (e *sentinel) Error() string { return e.s }
