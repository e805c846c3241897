// Package store holds the application state container: the single authority
// over settings, batches, batch types and theme. Every mutation funnels
// through its methods, persists through the injected blob repository and
// raises a transient notification for the dashboard.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/derive"
	"github.com/mamadbah2/milltrack/internal/domain/models"
	"github.com/mamadbah2/milltrack/internal/repository/blobstore"
)

// notifyWindow is how long a notification stays visible. A later notification
// restarts the window; there is no queue, last write wins.
const notifyWindow = 3 * time.Second

// Store is the application state container. Safe for concurrent use; the HTTP
// layer calls it from many goroutines.
type Store struct {
	repo   blobstore.Repository
	logger *zap.Logger

	mu         sync.Mutex
	settings   *models.Settings
	batches    []models.Batch
	batchTypes []models.BatchType
	theme      models.Theme
	seeded     bool

	notification string
	notifySeq    int
	notifyTTL    time.Duration

	newID func() string
	now   func() time.Time
}

// Snapshot is the dashboard bootstrap view of the container.
type Snapshot struct {
	Settings      *models.Settings         `json:"settings"`
	Theme         models.Theme             `json:"theme"`
	Notification  string                   `json:"notification"`
	SetupRequired bool                     `json:"setupRequired"`
	Batches       []models.CalculatedBatch `json:"batches"`
	BatchTypes    []models.BatchType       `json:"batchTypes"`
}

// BatchInput carries the creatable fields of a batch. Status is not part of
// the input: new batches always start in progress.
type BatchInput struct {
	BatchNumber   string
	MachineNumber int
	StartDate     models.Date
	EndDate       models.Date
	MeterValue    float64
	Color         string
}

// BatchTypeInput carries the creatable fields of a batch type.
type BatchTypeInput struct {
	BatchNumber string
	Color       string
}

// New loads all persisted state and returns a ready container. Read or decode
// failures on individual keys fall back to the default for that key and are
// logged; they never fail construction.
func New(ctx context.Context, repo blobstore.Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		repo:      repo,
		logger:    logger,
		theme:     models.ThemeLight,
		notifyTTL: notifyWindow,
		newID:     uuid.NewString,
		now:       time.Now,
	}

	s.loadKey(ctx, blobstore.KeySettings, &s.settings)
	s.loadKey(ctx, blobstore.KeyBatches, &s.batches)
	s.loadKey(ctx, blobstore.KeyBatchTypes, &s.batchTypes)
	s.loadKey(ctx, blobstore.KeyTheme, &s.theme)
	s.loadKey(ctx, blobstore.KeySeeded, &s.seeded)
	if s.theme != models.ThemeLight && s.theme != models.ThemeDark {
		s.theme = models.ThemeLight
	}

	// Installs predating the seed marker: record the marker so demo data can
	// never come back once the user has real (or deliberately zero) batches.
	// Only a first run with settings but no batches still gets the seed.
	if s.settings != nil && !s.seeded {
		if len(s.batches) == 0 {
			s.seedDemoData(ctx)
		}
		s.seeded = true
		s.persist(ctx, blobstore.KeySeeded, s.seeded)
	}

	return s
}

func (s *Store) loadKey(ctx context.Context, key string, out any) {
	err := s.repo.Get(ctx, key, out)
	if err == nil || errors.Is(err, blobstore.ErrNoValue) {
		return
	}
	s.logger.Warn("failed loading persisted value, using default",
		zap.String("key", key), zap.Error(err))
}

// persist writes one key through the repository. Failures are logged and
// swallowed: in-memory state stays authoritative for the session.
func (s *Store) persist(ctx context.Context, key string, value any) {
	if err := s.repo.Set(ctx, key, value); err != nil {
		s.logger.Error("persist failed, in-memory state remains authoritative",
			zap.String("key", key), zap.Error(err))
	}
}

// Snapshot returns the dashboard bootstrap view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Settings:      s.settingsCopyLocked(),
		Theme:         s.theme,
		Notification:  s.notification,
		SetupRequired: s.settings == nil,
		Batches:       derive.CalculateAll(s.batches),
		BatchTypes:    append([]models.BatchType{}, s.batchTypes...),
	}
}

// SetupRequired reports whether the setup wizard still gates the app.
func (s *Store) SetupRequired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings == nil
}

// Settings returns a copy of the current settings, or nil before setup.
func (s *Store) Settings() *models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsCopyLocked()
}

func (s *Store) settingsCopyLocked() *models.Settings {
	if s.settings == nil {
		return nil
	}
	copied := *s.settings
	return &copied
}

// Batches returns a copy of the raw batch records in storage order
// (most-recent-first by insertion).
func (s *Store) Batches() []models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Batch{}, s.batches...)
}

// CalculatedBatches returns the derived view, sorted newest-first.
func (s *Store) CalculatedBatches() []models.CalculatedBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return derive.CalculateAll(s.batches)
}

// BatchTypes returns a copy of the batch type list.
func (s *Store) BatchTypes() []models.BatchType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BatchType{}, s.batchTypes...)
}

// Batch looks up one calculated batch by id.
func (s *Store) Batch(id string) (models.CalculatedBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.batches {
		if b.ID == id {
			return derive.Calculate(b), nil
		}
	}
	return models.CalculatedBatch{}, fmt.Errorf("batch %s: %w", id, ErrNotFound)
}

// MachineBuckets groups the derived batches per machine 1..N.
func (s *Store) MachineBuckets() ([]models.MachineBucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return nil, ErrSetupRequired
	}
	return derive.GroupByMachine(derive.CalculateAll(s.batches), s.settings.NumberOfMachines), nil
}

// MonthlyReport builds the report for one calendar month.
func (s *Store) MonthlyReport(year int, month time.Month) models.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return derive.BuildMonthlyReport(derive.CalculateAll(s.batches), year, month)
}

// Theme returns the active theme.
func (s *Store) Theme() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Notification returns the transient notification text, empty once the window
// has elapsed.
func (s *Store) Notification() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notification
}

// notifyLocked sets the notification and restarts the auto-clear window.
// Caller holds s.mu.
func (s *Store) notifyLocked(message string) {
	s.notification = message
	s.notifySeq++
	seq := s.notifySeq

	time.AfterFunc(s.notifyTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.notifySeq == seq {
			s.notification = ""
		}
	})
}

// Notify raises a transient notification outside of a CRUD mutation, e.g.
// when an external call fails.
func (s *Store) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(message)
}

// AddBatch validates the input, assigns a fresh id, forces the status to
// in-progress and prepends the batch (most-recent-first convention).
func (s *Store) AddBatch(ctx context.Context, input BatchInput) (models.CalculatedBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return models.CalculatedBatch{}, ErrSetupRequired
	}
	if errs := s.validateBatchLocked(input); len(errs) > 0 {
		return models.CalculatedBatch{}, errs
	}

	batch := models.Batch{
		ID:            s.newID(),
		BatchNumber:   strings.TrimSpace(input.BatchNumber),
		MachineNumber: input.MachineNumber,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		MeterValue:    input.MeterValue,
		Status:        models.StatusInProgress,
		Color:         input.Color,
	}

	s.batches = append([]models.Batch{batch}, s.batches...)
	s.persist(ctx, blobstore.KeyBatches, s.batches)
	s.notifyLocked(fmt.Sprintf("Batch %s added", batch.BatchNumber))
	return derive.Calculate(batch), nil
}

// UpdateBatch replaces the batch with the matching id in place. The id never
// changes; an invalid status on the input keeps the stored one. Batch numbers
// must stay unique (case-insensitively) against all other batches on edit.
// Existence is settled before the duplicate scan so an unknown id always
// reports ErrNotFound, whatever number the payload carries.
func (s *Store) UpdateBatch(ctx context.Context, batch models.Batch) (models.CalculatedBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return models.CalculatedBatch{}, ErrSetupRequired
	}

	idx := -1
	for i, existing := range s.batches {
		if existing.ID == batch.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.CalculatedBatch{}, fmt.Errorf("batch %s: %w", batch.ID, ErrNotFound)
	}

	batch.BatchNumber = strings.TrimSpace(batch.BatchNumber)
	for i, existing := range s.batches {
		if i == idx {
			continue
		}
		if strings.EqualFold(existing.BatchNumber, batch.BatchNumber) {
			return models.CalculatedBatch{}, fmt.Errorf("batch number %q: %w", batch.BatchNumber, ErrDuplicateBatchNumber)
		}
	}

	input := BatchInput{
		BatchNumber:   batch.BatchNumber,
		MachineNumber: batch.MachineNumber,
		StartDate:     batch.StartDate,
		EndDate:       batch.EndDate,
		MeterValue:    batch.MeterValue,
		Color:         batch.Color,
	}
	if errs := s.validateBatchLocked(input); len(errs) > 0 {
		return models.CalculatedBatch{}, errs
	}

	if !batch.Status.Valid() {
		batch.Status = s.batches[idx].Status
	}

	s.batches[idx] = batch
	s.persist(ctx, blobstore.KeyBatches, s.batches)
	s.notifyLocked(fmt.Sprintf("Batch %s updated", batch.BatchNumber))
	return derive.Calculate(batch), nil
}

// DeleteBatch removes exactly the batch with the given id. A missing id is an
// explicit ErrNotFound rather than the silent no-op of older builds.
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.batches {
		if b.ID != id {
			continue
		}
		s.batches = append(s.batches[:i], s.batches[i+1:]...)
		s.persist(ctx, blobstore.KeyBatches, s.batches)
		s.notifyLocked(fmt.Sprintf("Batch %s deleted", b.BatchNumber))
		return nil
	}
	return fmt.Errorf("batch %s: %w", id, ErrNotFound)
}

func (s *Store) validateBatchLocked(input BatchInput) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(input.BatchNumber) == "" {
		errs["batchNumber"] = "must not be empty"
	}
	if input.MeterValue <= 0 {
		errs["meterValue"] = "must be greater than zero"
	}
	if s.settings != nil && (input.MachineNumber < 1 || input.MachineNumber > s.settings.NumberOfMachines) {
		errs["machineNumber"] = fmt.Sprintf("must be between 1 and %d", s.settings.NumberOfMachines)
	}
	if !input.StartDate.IsZero() && !input.EndDate.IsZero() && input.EndDate.Time.Before(input.StartDate.Time) {
		errs["endDate"] = "must not be before start date"
	}
	if input.StartDate.IsZero() {
		errs["startDate"] = "must be provided"
	}

	return errs
}

// AddBatchType creates a reusable batch template. Batch numbers are unique
// across all batch types, compared case-insensitively. Gated behind setup like
// the batch mutations; the seed written during setup replaces the type list
// wholesale and must never land on top of user-created types.
func (s *Store) AddBatchType(ctx context.Context, input BatchTypeInput) (models.BatchType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return models.BatchType{}, ErrSetupRequired
	}

	number := strings.TrimSpace(input.BatchNumber)
	if number == "" {
		return models.BatchType{}, FieldErrors{"batchNumber": "must not be empty"}
	}
	for _, bt := range s.batchTypes {
		if strings.EqualFold(bt.BatchNumber, number) {
			return models.BatchType{}, fmt.Errorf("batch number %q: %w", number, ErrDuplicateBatchNumber)
		}
	}

	batchType := models.BatchType{
		ID:          s.newID(),
		BatchNumber: number,
		Color:       input.Color,
	}
	s.batchTypes = append(s.batchTypes, batchType)
	s.persist(ctx, blobstore.KeyBatchTypes, s.batchTypes)
	s.notifyLocked(fmt.Sprintf("Batch type %s added", number))
	return batchType, nil
}

// UpdateBatchType replaces the batch type with the matching id. It raises no
// notification: color-picker drags update in rapid succession and would spam
// the notification window otherwise.
func (s *Store) UpdateBatchType(ctx context.Context, batchType models.BatchType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	number := strings.TrimSpace(batchType.BatchNumber)
	if number == "" {
		return FieldErrors{"batchNumber": "must not be empty"}
	}

	idx := -1
	for i, bt := range s.batchTypes {
		if bt.ID == batchType.ID {
			idx = i
			continue
		}
		if strings.EqualFold(bt.BatchNumber, number) {
			return fmt.Errorf("batch number %q: %w", number, ErrDuplicateBatchNumber)
		}
	}
	if idx < 0 {
		return fmt.Errorf("batch type %s: %w", batchType.ID, ErrNotFound)
	}

	batchType.BatchNumber = number
	s.batchTypes[idx] = batchType
	s.persist(ctx, blobstore.KeyBatchTypes, s.batchTypes)
	return nil
}

// DeleteBatchType removes one batch type. Existing batches created from it
// are untouched.
func (s *Store) DeleteBatchType(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, bt := range s.batchTypes {
		if bt.ID != id {
			continue
		}
		s.batchTypes = append(s.batchTypes[:i], s.batchTypes[i+1:]...)
		s.persist(ctx, blobstore.KeyBatchTypes, s.batchTypes)
		s.notifyLocked(fmt.Sprintf("Batch type %s deleted", bt.BatchNumber))
		return nil
	}
	return fmt.Errorf("batch type %s: %w", id, ErrNotFound)
}

// CompleteSetup stores the wizard's settings and, exactly once per install,
// seeds the demonstration dataset. The one-shot marker is persisted so
// deleting every batch later never brings the demo data back.
func (s *Store) CompleteSetup(ctx context.Context, settings models.Settings) error {
	if errs := validateSettings(settings); len(errs) > 0 {
		return errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = &settings
	s.persist(ctx, blobstore.KeySettings, s.settings)

	if !s.seeded {
		s.seedDemoData(ctx)
		s.seeded = true
		s.persist(ctx, blobstore.KeySeeded, s.seeded)
	}

	s.notifyLocked("Setup completed")
	return nil
}

// SetSettings replaces the settings wholesale.
func (s *Store) SetSettings(ctx context.Context, settings models.Settings) error {
	if errs := validateSettings(settings); len(errs) > 0 {
		return errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = &settings
	s.persist(ctx, blobstore.KeySettings, s.settings)
	s.notifyLocked("Settings saved")
	return nil
}

// ClearSettings drops the settings, putting the app back into setup mode.
func (s *Store) ClearSettings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = nil
	if err := s.repo.Delete(ctx, blobstore.KeySettings); err != nil {
		s.logger.Error("failed clearing settings blob", zap.Error(err))
	}
	return nil
}

func validateSettings(settings models.Settings) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(settings.CompanyName) == "" {
		errs["companyName"] = "must not be empty"
	}
	if settings.NumberOfMachines < 1 {
		errs["numberOfMachines"] = "must be at least 1"
	}
	return errs
}

// ToggleTheme flips light/dark and persists the choice.
func (s *Store) ToggleTheme(ctx context.Context) models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = s.theme.Toggle()
	s.persist(ctx, blobstore.KeyTheme, s.theme)
	return s.theme
}

// ReplaceAll swaps settings and batches in one step; this is the backup
// restore path. Batch types and theme are not part of the backup envelope and
// stay as they are.
func (s *Store) ReplaceAll(ctx context.Context, settings *models.Settings, batches []models.Batch) error {
	if settings != nil {
		if errs := validateSettings(*settings); len(errs) > 0 {
			return errs
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	s.batches = append([]models.Batch{}, batches...)
	if settings == nil {
		if err := s.repo.Delete(ctx, blobstore.KeySettings); err != nil {
			s.logger.Error("failed clearing settings blob", zap.Error(err))
		}
	} else {
		s.persist(ctx, blobstore.KeySettings, s.settings)
	}
	s.persist(ctx, blobstore.KeyBatches, s.batches)
	s.notifyLocked("Backup restored")
	return nil
}
