package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/persistence-guard/internal/config"
	"github.com/maxviazov/persistence-guard/internal/handler"
	"github.com/maxviazov/persistence-guard/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve health probes and the entries API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath())
			if err != nil {
				return err
			}
			appLogger, err := logger.New(&cfg.Logger)
			if err != nil {
				return err
			}

			b, err := openBackend(cmd.Context(), cfg, appLogger)
			if err != nil {
				return err
			}
			defer b.close()

			if cfg.Logger.Env != "dev" {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			r.Use(gin.Recovery(), requestLogger(appLogger))
			handler.Register(r, b.pinger, b.store, b.tx, appLogger)

			return serve(cmd.Context(), &http.Server{Addr: cfg.Server.Addr, Handler: r},
				time.Duration(cfg.Server.ShutdownTimeout)*time.Second, appLogger)
		},
	}
}

// serve runs srv until ctx is done, then shuts it down within timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Warn()
		}
		event.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
