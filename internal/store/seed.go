package store

import (
	"context"

	"github.com/mamadbah2/milltrack/internal/domain/models"
	"github.com/mamadbah2/milltrack/internal/repository/blobstore"
)

// seedDemoData installs the demonstration dataset shown after a fresh setup:
// a handful of batch types and batches spread over the current and previous
// month so the dashboard, machine view and reports all have something to
// render. Sample data only; runs at most once per install. Caller holds s.mu.
func (s *Store) seedDemoData(ctx context.Context) {
	today := s.now()
	date := func(daysAgo int) models.Date {
		t := today.AddDate(0, 0, -daysAgo)
		return models.NewDate(t.Year(), t.Month(), t.Day())
	}

	machines := 1
	if s.settings != nil {
		machines = s.settings.NumberOfMachines
	}
	machine := func(n int) int {
		if n > machines {
			return machines
		}
		return n
	}

	s.batchTypes = []models.BatchType{
		{ID: s.newID(), BatchNumber: "LN-2041", Color: "#1e3a8a"},
		{ID: s.newID(), BatchNumber: "CT-118", Color: "#9a3412"},
		{ID: s.newID(), BatchNumber: "PS-77", Color: "#166534"},
	}

	s.batches = []models.Batch{
		{
			ID:            s.newID(),
			BatchNumber:   "LN-2041",
			MachineNumber: machine(1),
			StartDate:     date(2),
			EndDate:       date(-3),
			MeterValue:    1250.5,
			Status:        models.StatusInProgress,
			Color:         "#1e3a8a",
		},
		{
			ID:            s.newID(),
			BatchNumber:   "CT-118",
			MachineNumber: machine(2),
			StartDate:     date(9),
			EndDate:       date(4),
			MeterValue:    980,
			Status:        models.StatusCompleted,
			Color:         "#9a3412",
		},
		{
			ID:            s.newID(),
			BatchNumber:   "PS-77",
			MachineNumber: machine(1),
			StartDate:     date(16),
			EndDate:       date(10),
			MeterValue:    2140,
			Status:        models.StatusCompleted,
			Color:         "#166534",
		},
		{
			ID:            s.newID(),
			BatchNumber:   "LN-1988",
			MachineNumber: machine(3),
			StartDate:     date(34),
			EndDate:       date(27),
			MeterValue:    1675.25,
			Status:        models.StatusDelayed,
			Color:         "#7c2d12",
		},
	}

	s.persist(ctx, blobstore.KeyBatchTypes, s.batchTypes)
	s.persist(ctx, blobstore.KeyBatches, s.batches)
}
