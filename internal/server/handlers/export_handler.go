package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/service/export"
	"github.com/mamadbah2/milltrack/internal/store"
)

// ExportHandler serves the downloadable byte streams: PDF bill, CSV and XLSX
// histories, and the JSON backup plus its restore counterpart.
type ExportHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewExportHandler constructs the HTTP handler adapter.
func NewExportHandler(st *store.Store, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{store: st, logger: logger}
}

func attach(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// Bill renders the PDF bill for one batch.
func (h *ExportHandler) Bill(c *gin.Context) {
	settings := h.store.Settings()
	if settings == nil {
		respondError(c, store.ErrSetupRequired)
		return
	}

	batch, err := h.store.Batch(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := export.Bill(batch, *settings, time.Now())
	if err != nil {
		h.logger.Error("bill export failed", zap.String("batch", batch.ID), zap.Error(err))
		respondError(c, err)
		return
	}

	attach(c, fmt.Sprintf("bill-%s.pdf", batch.BatchNumber), "application/pdf", data)
}

// machineParam resolves the :machine path segment against the configured
// machine count.
func (h *ExportHandler) machineParam(c *gin.Context) (int, bool) {
	settings := h.store.Settings()
	if settings == nil {
		respondError(c, store.ErrSetupRequired)
		return 0, false
	}

	machine, err := strconv.Atoi(c.Param("machine"))
	if err != nil || machine < 1 || machine > settings.NumberOfMachines {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("machine must be between 1 and %d", settings.NumberOfMachines)})
		return 0, false
	}
	return machine, true
}

// MachineCSV downloads one machine's batch history as CSV.
func (h *ExportHandler) MachineCSV(c *gin.Context) {
	machine, ok := h.machineParam(c)
	if !ok {
		return
	}

	buckets, err := h.store.MachineBuckets()
	if err != nil {
		respondError(c, err)
		return
	}
	if machine > len(buckets) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "machine out of range"})
		return
	}

	data, err := export.MachineCSV(machine, buckets[machine-1].Batches)
	if err != nil {
		respondError(c, err)
		return
	}
	attach(c, fmt.Sprintf("machine-%d.csv", machine), "text/csv", data)
}

// MachineXLSX downloads one machine's batch history as an Excel workbook.
func (h *ExportHandler) MachineXLSX(c *gin.Context) {
	machine, ok := h.machineParam(c)
	if !ok {
		return
	}

	buckets, err := h.store.MachineBuckets()
	if err != nil {
		respondError(c, err)
		return
	}
	if machine > len(buckets) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "machine out of range"})
		return
	}

	data, err := export.MachineXLSX(machine, buckets[machine-1].Batches)
	if err != nil {
		respondError(c, err)
		return
	}
	attach(c, fmt.Sprintf("machine-%d.xlsx", machine),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// MonthlyCSV downloads the month's report as CSV.
func (h *ExportHandler) MonthlyCSV(c *gin.Context) {
	year, month, ok := monthQuery(c)
	if !ok {
		return
	}

	report := h.store.MonthlyReport(year, month)
	data, err := export.MonthlyCSV(report)
	if err != nil {
		respondError(c, err)
		return
	}
	attach(c, fmt.Sprintf("report-%04d-%02d.csv", year, int(month)), "text/csv", data)
}

// MonthlyXLSX downloads the month's report as an Excel workbook.
func (h *ExportHandler) MonthlyXLSX(c *gin.Context) {
	year, month, ok := monthQuery(c)
	if !ok {
		return
	}

	report := h.store.MonthlyReport(year, month)
	data, err := export.MonthlyXLSX(report)
	if err != nil {
		respondError(c, err)
		return
	}
	attach(c, fmt.Sprintf("report-%04d-%02d.xlsx", year, int(month)),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Backup downloads the JSON backup envelope.
func (h *ExportHandler) Backup(c *gin.Context) {
	data, err := export.Backup(h.store.Settings(), h.store.Batches(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	attach(c, "milltrack-backup-"+time.Now().Format("2006-01-02")+".json", "application/json", data)
}

// Restore replaces settings and batches from an uploaded backup file.
func (h *ExportHandler) Restore(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBindError(c, err)
		return
	}

	backup, err := export.ParseBackup(body)
	if err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.store.ReplaceAll(c.Request.Context(), backup.Settings, backup.Batches); err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("backup restored", zap.Int("batches", len(backup.Batches)))
	c.JSON(http.StatusOK, h.store.Snapshot())
}
