package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/service/summary"
	"github.com/mamadbah2/milltrack/internal/store"
)

// ReportHandler serves the machines page, monthly reports and the AI summary
// task.
type ReportHandler struct {
	store   *store.Store
	summary *summary.Service
	logger  *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(st *store.Store, summarySvc *summary.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{store: st, summary: summarySvc, logger: logger}
}

// Machines returns one bucket per configured machine, 1..N, empty ones
// included.
func (h *ReportHandler) Machines(c *gin.Context) {
	buckets, err := h.store.MachineBuckets()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": buckets})
}

// monthQuery resolves year/month query params, defaulting to the current
// month.
func monthQuery(c *gin.Context) (int, time.Month, bool) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a positive integer"})
			return 0, 0, false
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
			return 0, 0, false
		}
		month = time.Month(parsed)
	}
	return year, month, true
}

// Monthly returns the report for the requested (or current) month.
func (h *ReportHandler) Monthly(c *gin.Context) {
	year, month, ok := monthQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.store.MonthlyReport(year, month))
}

// StartSummary kicks off AI analysis of a month. 409 while one is pending;
// the page keeps its trigger control disabled until the state leaves pending.
func (h *ReportHandler) StartSummary(c *gin.Context) {
	year, month, ok := monthQuery(c)
	if !ok {
		return
	}

	settings := h.store.Settings()
	if settings == nil {
		respondError(c, store.ErrSetupRequired)
		return
	}

	report := h.store.MonthlyReport(year, month)
	if err := h.summary.Start(report, settings.CompanyName); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, h.summary.State())
}

// SummaryState reports the task snapshot for polling.
func (h *ReportHandler) SummaryState(c *gin.Context) {
	c.JSON(http.StatusOK, h.summary.State())
}

// CancelSummary aborts a pending generation or dismisses a finished result.
func (h *ReportHandler) CancelSummary(c *gin.Context) {
	h.summary.Cancel()
	h.summary.Dismiss()
	c.JSON(http.StatusOK, h.summary.State())
}
