package probe

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect maps a database/sql driver name to the goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case "pgx", "postgres":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// Migrate applies the probe schema. It runs on the raw *sql.DB: migration
// failures are operator errors, not something callers branch on.
func Migrate(ctx context.Context, db *sql.DB, driver string, logger zerolog.Logger) error {
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	goose.SetLogger(gooseLogger{l: logger.With().Str("component", "goose").Logger()})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct{ l zerolog.Logger }

func (g gooseLogger) Printf(format string, v ...any) { g.l.Info().Msgf(format, v...) }
func (g gooseLogger) Fatalf(format string, v ...any) { g.l.Fatal().Msgf(format, v...) }
