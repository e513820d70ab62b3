package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/rs/zerolog"
)

// pgxLogger adapts zerolog.Logger to pgx's tracelog interface.
// Failed statements carry the normalized kind so duplicates are easy to filter.
type pgxLogger struct {
	logger zerolog.Logger
	c      *repository.Classifier
}

// newPgxLogger tags failures with c, the classifier the pool's handles are wrapped with.
// A nil c means the default classifier.
func newPgxLogger(logger zerolog.Logger, c *repository.Classifier) *pgxLogger {
	if c == nil {
		c = repository.Default()
	}
	l := logger.With().Str("component", "pgx").Logger()
	return &pgxLogger{logger: l, c: c}
}

// Log implements tracelog.Logger by mapping pgx levels to zerolog and
// lifting sql, args and err out of data into typed fields.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone {
		return
	}

	var event *zerolog.Event
	switch level {
	case tracelog.LogLevelTrace:
		event = l.logger.Trace()
	case tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case tracelog.LogLevelInfo:
		event = l.logger.Info()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info().Str("pgx_log_level", level.String())
	}

	// data belongs to pgx; copy before removing lifted keys
	rest := make(map[string]any, len(data))
	for k, v := range data {
		rest[k] = v
	}

	if s, ok := rest["sql"].(string); ok {
		event = event.Str("sql", s)
		delete(rest, "sql")
	}
	if args, ok := rest["args"]; ok && level == tracelog.LogLevelTrace {
		event = event.Interface("args", args)
	}
	delete(rest, "args")
	if err, ok := rest["err"].(error); ok {
		event = event.Err(err).Str("kind", l.c.Classify(err).Kind.String())
		delete(rest, "err")
	}

	if len(rest) > 0 {
		event = event.Fields(rest)
	}
	event.Msg(msg)
}
