package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/domain/models"
	"github.com/mamadbah2/milltrack/internal/store"
)

// BatchTypeHandler serves batch type management.
type BatchTypeHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewBatchTypeHandler constructs the HTTP handler adapter.
func NewBatchTypeHandler(st *store.Store, logger *zap.Logger) *BatchTypeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchTypeHandler{store: st, logger: logger}
}

type batchTypeRequest struct {
	BatchNumber string `json:"batchNumber" binding:"required"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// List returns all batch types.
func (h *BatchTypeHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"batchTypes": h.store.BatchTypes()})
}

// Create adds a batch type; numbers are unique, case-insensitively.
func (h *BatchTypeHandler) Create(c *gin.Context) {
	var req batchTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.store.AddBatchType(c.Request.Context(), store.BatchTypeInput{
		BatchNumber: req.BatchNumber,
		Color:       req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update replaces the batch type with the id from the path. Fired on every
// color-picker change, hence no notification on the store side.
func (h *BatchTypeHandler) Update(c *gin.Context) {
	var req batchTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	batchType := models.BatchType{
		ID:          c.Param("id"),
		BatchNumber: req.BatchNumber,
		Color:       req.Color,
	}
	if err := h.store.UpdateBatchType(c.Request.Context(), batchType); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batchType)
}

// Delete removes the batch type; existing batches are unaffected.
func (h *BatchTypeHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteBatchType(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
