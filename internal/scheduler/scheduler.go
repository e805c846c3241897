package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/config"
	"github.com/mamadbah2/milltrack/internal/repository/sheets"
	"github.com/mamadbah2/milltrack/internal/service/export"
	"github.com/mamadbah2/milltrack/internal/store"
)

// Scheduler manages the background jobs: the automatic JSON backup and, when
// configured, the monthly report sync into Google Sheets.
type Scheduler struct {
	cron   *cron.Cron
	store  *store.Store
	sheets sheets.Repository // nil when sheets sync is disabled
	cfg    config.BackupConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance. sheetsRepo may be nil. Cron
// expressions fire in cfg.Location so backups land at the configured local
// hour regardless of where the process runs.
func NewScheduler(cfg config.BackupConfig, st *store.Store, sheetsRepo sheets.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(location)),
		store:  st,
		sheets: sheetsRepo,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("backup_schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.writeBackup); err != nil {
		s.logger.Error("failed to schedule automatic backup", zap.Error(err))
	}

	if s.sheets != nil {
		// First day of each month at 06:00: push the previous month's report.
		if _, err := s.cron.AddFunc("0 6 1 * *", s.syncPreviousMonthReport); err != nil {
			s.logger.Error("failed to schedule sheets report sync", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) writeBackup() {
	data, err := export.Backup(s.store.Settings(), s.store.Batches(), time.Now())
	if err != nil {
		s.logger.Error("failed to build automatic backup", zap.Error(err))
		return
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		s.logger.Error("failed to create backup directory", zap.String("dir", s.cfg.Dir), zap.Error(err))
		return
	}

	name := "backup-" + time.Now().Format("2006-01-02") + ".json"
	path := filepath.Join(s.cfg.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("failed to write automatic backup", zap.String("path", path), zap.Error(err))
		return
	}

	s.logger.Info("automatic backup written", zap.String("path", path))
}

func (s *Scheduler) syncPreviousMonthReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	// Last day of the previous month, immune to short-month normalization.
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	report := s.store.MonthlyReport(previous.Year(), previous.Month())

	if err := s.sheets.AppendMonthlyReport(ctx, report); err != nil {
		s.logger.Error("failed to sync monthly report to sheets", zap.String("month", report.Month), zap.Error(err))
		return
	}

	s.logger.Info("monthly report synced to sheets", zap.String("month", report.Month))
}
