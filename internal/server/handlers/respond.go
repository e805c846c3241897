// Package handlers adapts the state container and its collaborators to the
// dashboard's HTTP surface. Input validation happens here (binding tags plus
// the container's field-level checks) before any mutation runs.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/milltrack/internal/service/summary"
	"github.com/mamadbah2/milltrack/internal/store"
)

// respondError maps domain errors onto HTTP statuses. Validation failures stay
// field-level so forms can highlight the offending inputs.
func respondError(c *gin.Context, err error) {
	var fields store.FieldErrors
	switch {
	case errors.As(err, &fields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateBatchNumber):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrSetupRequired):
		c.JSON(http.StatusConflict, gin.H{"error": "setup required"})
	case errors.Is(err, summary.ErrGenerationInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "summary generation already in progress"})
	case errors.Is(err, summary.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai summary is not configured"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondBindError reports a malformed or incomplete request body.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
}
