package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/maxviazov/persistence-guard/internal/config"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/rs/zerolog"
)

const pingTimeout = 5 * time.Second

// NewPool builds a pgx pool from cfg.Database with SQL tracing routed to logger.
// Traced failures are classified with c; pass the same classifier to Wrap.
// The caller owns the pool; wrap it with Wrap before handing it to repositories.
func NewPool(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, c *repository.Classifier) (*pgxpool.Pool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	dsn, err := cfg.Database.ConnString()
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newPgxLogger(*logger, c),
		LogLevel: traceLevel(effectiveLevel(*logger)),
	}

	db := cfg.Database
	if db.MaxConns > 0 {
		poolConfig.MaxConns = db.MaxConns
	}
	if db.MinConns > 0 {
		poolConfig.MinConns = db.MinConns
	}
	if db.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(db.MaxConnLifetime) * time.Second
	}
	if db.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = time.Duration(db.MaxConnIdleTime) * time.Second
	}
	if db.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = time.Duration(db.HealthCheckPeriod) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// bounded ping so startup does not hang on an unreachable server
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Uint16("port", poolConfig.ConnConfig.Port).
		Str("db", poolConfig.ConnConfig.Database).
		Msg("Successfully connected to PostgreSQL")

	return pool, nil
}

// effectiveLevel is the stricter of the logger's own level and the global one.
func effectiveLevel(logger zerolog.Logger) zerolog.Level {
	if g := zerolog.GlobalLevel(); g > logger.GetLevel() {
		return g
	}
	return logger.GetLevel()
}

func traceLevel(l zerolog.Level) tracelog.LogLevel {
	switch {
	case l <= zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case l <= zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case l <= zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case l <= zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}
