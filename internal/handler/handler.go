package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/persistence-guard/internal/probe"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/rs/zerolog"
)

// APIV1Prefix is the canonical base path for public HTTP API v1.
const APIV1Prefix = "/api/v1"

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, db repository.Pinger, store probe.Store, tx repository.TxManager, logger zerolog.Logger) {
	h := NewHealthHandler(db)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewEntryHandler(store, tx, logger).Register(api)
	}
}
