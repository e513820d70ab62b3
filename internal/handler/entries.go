package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maxviazov/persistence-guard/internal/probe"
	"github.com/maxviazov/persistence-guard/internal/repository"
	"github.com/maxviazov/persistence-guard/pkg/response"
	"github.com/rs/zerolog"
)

// EntryHandler serves the probe table over HTTP so clients can provoke
// duplicates themselves and see the mapped status.
type EntryHandler struct {
	store  probe.Store
	tx     repository.TxManager
	logger zerolog.Logger
}

func NewEntryHandler(store probe.Store, tx repository.TxManager, logger zerolog.Logger) *EntryHandler {
	return &EntryHandler{store: store, tx: tx, logger: logger}
}

func (h *EntryHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/entries")
	{
		g.POST("", h.create)
		g.GET("/:entry_id", h.get)
		g.DELETE("/:entry_id", h.delete)
	}
	r.POST("/probe", h.probe)
}

type createEntryRequest struct {
	ID    string `json:"id" binding:"omitempty,max=36"`
	Label string `json:"label" binding:"required,max=64"`
}

type entryResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (h *EntryHandler) create(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, response.ErrInvalidInput)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := h.store.Insert(c.Request.Context(), req.ID, req.Label); err != nil {
		h.logFailure(err, "insert entry")
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, entryResponse{ID: req.ID, Label: req.Label})
}

// get reports a missing id as a persistence failure: classification is binary.
func (h *EntryHandler) get(c *gin.Context) {
	id := c.Param("entry_id")
	label, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.logFailure(err, "get entry")
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, entryResponse{ID: id, Label: label})
}

func (h *EntryHandler) delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("entry_id")); err != nil {
		h.logFailure(err, "delete entry")
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EntryHandler) probe(c *gin.Context) {
	report, err := probe.Run(c.Request.Context(), h.store, h.tx, h.logger)
	if err != nil {
		h.logFailure(err, "probe run")
		response.WriteError(c, err)
		return
	}
	status := http.StatusOK
	if !report.OK() {
		status = http.StatusInternalServerError
	}
	response.WriteData(c, status, report)
}

func (h *EntryHandler) logFailure(err error, op string) {
	kind, _ := repository.KindOf(err)
	h.logger.Warn().Err(err).Str("op", op).Str("kind", kind.String()).Msg("request failed")
}
