package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/persistence-guard/internal/repository"
)

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	db repository.Pinger
}

func NewHealthHandler(db repository.Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness pings the guarded handle. Only the normalized kind is reported.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  repository.Classify(err).Kind.String(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
