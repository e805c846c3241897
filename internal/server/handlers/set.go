package handlers

import (
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/service/summary"
	"github.com/mamadbah2/milltrack/internal/store"
)

// Set bundles every handler the router mounts.
type Set struct {
	Dashboard  *DashboardHandler
	Settings   *SettingsHandler
	Batches    *BatchHandler
	BatchTypes *BatchTypeHandler
	Reports    *ReportHandler
	Exports    *ExportHandler
}

// NewSet wires all handlers against the shared state container.
func NewSet(st *store.Store, summarySvc *summary.Service, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Set{
		Dashboard:  NewDashboardHandler(st, logger.Named("handlers.dashboard")),
		Settings:   NewSettingsHandler(st, logger.Named("handlers.settings")),
		Batches:    NewBatchHandler(st, logger.Named("handlers.batches")),
		BatchTypes: NewBatchTypeHandler(st, logger.Named("handlers.batchtypes")),
		Reports:    NewReportHandler(st, summarySvc, logger.Named("handlers.reports")),
		Exports:    NewExportHandler(st, logger.Named("handlers.exports")),
	}
}
