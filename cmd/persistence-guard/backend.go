package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/maxviazov/persistence-guard/internal/config"
	"github.com/maxviazov/persistence-guard/internal/probe"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/maxviazov/persistence-guard/internal/repository/postgres"
	"github.com/maxviazov/persistence-guard/internal/repository/sqldb"
	"github.com/rs/zerolog"
)

// backend is a migrated, guarded store plus the handles the commands need.
type backend struct {
	store  probe.Store
	tx     repository.TxManager
	pinger repository.Pinger
	close  func()
}

// openBackend connects to the configured driver, applies the probe migration and
// wraps the handle with the classifier built from cfg.Classifier.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	classifier := repository.FromConfig(cfg.Classifier)
	driver := cfg.Database.Driver

	if driver == "pgx" {
		pool, err := postgres.NewPool(ctx, cfg, &log, classifier)
		if err != nil {
			return nil, err
		}

		raw := stdlib.OpenDBFromPool(pool)
		err = probe.Migrate(ctx, raw, driver, log)
		_ = raw.Close()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate %s: %w", driver, err)
		}

		db := postgres.Wrap(pool, classifier)
		return &backend{
			store:  probe.NewPgxStore(db),
			tx:     postgres.NewTxManager(db),
			pinger: db,
			close:  pool.Close,
		}, nil
	}

	dsn, err := cfg.Database.ConnString()
	if err != nil {
		return nil, err
	}
	raw, err := sqldb.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := probe.Migrate(ctx, raw, driver, log); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}

	db := sqldb.Wrap(raw, classifier)
	return &backend{
		store:  probe.NewSQLStore(db, driver),
		tx:     sqldb.NewTxManager(db),
		pinger: db,
		close:  func() { _ = raw.Close() },
	}, nil
}
