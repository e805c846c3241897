package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/domain/models"
	"github.com/mamadbah2/milltrack/internal/store"
)

// BatchHandler serves batch CRUD for the dashboard and machine pages.
type BatchHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewBatchHandler constructs the HTTP handler adapter.
func NewBatchHandler(st *store.Store, logger *zap.Logger) *BatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchHandler{store: st, logger: logger}
}

type batchRequest struct {
	BatchNumber   string  `json:"batchNumber" binding:"required"`
	MachineNumber int     `json:"machineNumber" binding:"required,min=1"`
	StartDate     string  `json:"startDate" binding:"required"`
	EndDate       string  `json:"endDate" binding:"required"`
	MeterValue    float64 `json:"meterValue" binding:"required,gt=0"`
	Status        string  `json:"status" binding:"omitempty,oneof=in-progress completed delayed"`
	Color         string  `json:"color" binding:"omitempty,hexcolor"`
}

func (r batchRequest) dates() (start, end models.Date, errs store.FieldErrors) {
	errs = store.FieldErrors{}
	start, err := models.ParseDate(r.StartDate)
	if err != nil {
		errs["startDate"] = "must be a YYYY-MM-DD date"
	}
	end, err = models.ParseDate(r.EndDate)
	if err != nil {
		errs["endDate"] = "must be a YYYY-MM-DD date"
	}
	if len(errs) == 0 {
		errs = nil
	}
	return start, end, errs
}

// List returns every batch with derived metrics, newest first.
func (h *BatchHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"batches": h.store.CalculatedBatches()})
}

// Create adds a new batch. Status on the request body is ignored: new batches
// always start in progress.
func (h *BatchHandler) Create(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	start, end, errs := req.dates()
	if errs != nil {
		respondError(c, errs)
		return
	}

	created, err := h.store.AddBatch(c.Request.Context(), store.BatchInput{
		BatchNumber:   req.BatchNumber,
		MachineNumber: req.MachineNumber,
		StartDate:     start,
		EndDate:       end,
		MeterValue:    req.MeterValue,
		Color:         req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update replaces the batch with the id from the path.
func (h *BatchHandler) Update(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	start, end, errs := req.dates()
	if errs != nil {
		respondError(c, errs)
		return
	}

	updated, err := h.store.UpdateBatch(c.Request.Context(), models.Batch{
		ID:            c.Param("id"),
		BatchNumber:   req.BatchNumber,
		MachineNumber: req.MachineNumber,
		StartDate:     start,
		EndDate:       end,
		MeterValue:    req.MeterValue,
		Status:        models.BatchStatus(req.Status),
		Color:         req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes the batch with the id from the path. Unknown ids are a 404.
func (h *BatchHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
