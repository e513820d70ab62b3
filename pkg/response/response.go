// Package response maps normalized persistence errors to HTTP responses.
// Handlers branch on the two repository kinds only, never on driver errors.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/persistence-guard/internal/repository"
)

// ErrInvalidInput is returned by handlers for requests that fail binding.
var ErrInvalidInput = errors.New("invalid input")

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MapError converts a normalized error into an HTTP status and payload.
// The driver message is never exposed; it stays in the cause chain for logs.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, ErrorPayload{Error: "invalid_input"}
	case errors.Is(err, repository.ErrDuplicateEntry):
		return http.StatusConflict, ErrorPayload{
			Error:   repository.KindDuplicateEntry.String(),
			Message: "resource already exists",
		}
	case errors.Is(err, repository.ErrPersistenceFailure):
		return http.StatusInternalServerError, ErrorPayload{Error: repository.KindPersistenceFailure.String()}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
	}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
