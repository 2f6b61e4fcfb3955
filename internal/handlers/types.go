package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"launchcontrol/internal/engine"
)

// Engine is the shared engine service for all handlers. It is wired once at
// startup via InitEngine.
var Engine *engine.Service

// InitEngine binds the handler layer to the engine service.
func InitEngine(s *engine.Service) {
	Engine = s
}

// statusForError maps the engine error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrState):
		return http.StatusConflict
	case errors.Is(err, engine.ErrLimit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}
