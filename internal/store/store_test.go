package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/domain/models"
	"github.com/mamadbah2/milltrack/internal/repository/blobstore"
)

// newTestStore returns a container with setup completed, demo seeding already
// burned, and a short notification window.
func newTestStore(t *testing.T) (*Store, *blobstore.Memory) {
	t.Helper()
	ctx := context.Background()

	repo := blobstore.NewMemory()
	require.NoError(t, repo.Set(ctx, blobstore.KeySeeded, true))

	s := New(ctx, repo, zap.NewNop())
	s.notifyTTL = 30 * time.Millisecond
	require.NoError(t, s.CompleteSetup(ctx, models.Settings{CompanyName: "Aurora Textiles", NumberOfMachines: 3}))
	return s, repo
}

func validInput() BatchInput {
	return BatchInput{
		BatchNumber:   "LN-2041",
		MachineNumber: 1,
		StartDate:     models.NewDate(2026, time.August, 1),
		EndDate:       models.NewDate(2026, time.August, 9),
		MeterValue:    1250.5,
		Color:         "#1e3a8a",
	}
}

func TestAddBatch_ForcesInProgressAndPrepends(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	first, err := s.AddBatch(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, first.Status)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 313, first.FTotal)
	assert.Equal(t, 4.0, first.Average)

	second := validInput()
	second.BatchNumber = "CT-118"
	_, err = s.AddBatch(ctx, second)
	require.NoError(t, err)

	batches := s.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, "CT-118", batches[0].BatchNumber, "newest batch is prepended")

	assert.GreaterOrEqual(t, repo.Writes(blobstore.KeyBatches), 2, "every mutation persists")
	assert.Contains(t, s.Notification(), "CT-118")
}

func TestAddBatch_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*BatchInput)
		field  string
	}{
		{"empty batch number", func(in *BatchInput) { in.BatchNumber = "  " }, "batchNumber"},
		{"zero meter", func(in *BatchInput) { in.MeterValue = 0 }, "meterValue"},
		{"negative meter", func(in *BatchInput) { in.MeterValue = -12 }, "meterValue"},
		{"machine too high", func(in *BatchInput) { in.MachineNumber = 4 }, "machineNumber"},
		{"machine zero", func(in *BatchInput) { in.MachineNumber = 0 }, "machineNumber"},
		{"end before start", func(in *BatchInput) { in.EndDate = models.NewDate(2026, time.July, 1) }, "endDate"},
		{"missing start", func(in *BatchInput) { in.StartDate = models.Date{} }, "startDate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := s.AddBatch(ctx, in)
			var fields FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Contains(t, fields, tc.field)
		})
	}

	assert.Empty(t, s.Batches(), "failed validation never mutates state")
}

func TestAddBatch_RequiresSetup(t *testing.T) {
	repo := blobstore.NewMemory()
	s := New(context.Background(), repo, zap.NewNop())

	_, err := s.AddBatch(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrSetupRequired)
}

func TestAddBatchType_RequiresSetup(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, blobstore.NewMemory(), zap.NewNop())

	// Without the gate the seed written during setup would wipe any type
	// created here.
	_, err := s.AddBatchType(ctx, BatchTypeInput{BatchNumber: "MY-1", Color: "#123456"})
	assert.ErrorIs(t, err, ErrSetupRequired)

	require.NoError(t, s.CompleteSetup(ctx, models.Settings{CompanyName: "Aurora Textiles", NumberOfMachines: 3}))
	created, err := s.AddBatchType(ctx, BatchTypeInput{BatchNumber: "MY-1", Color: "#123456"})
	require.NoError(t, err)

	var ids []string
	for _, bt := range s.BatchTypes() {
		ids = append(ids, bt.ID)
	}
	assert.Contains(t, ids, created.ID, "types created after setup survive")
}

func TestUpdateBatch(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.AddBatch(ctx, validInput())
	require.NoError(t, err)

	other := validInput()
	other.BatchNumber = "CT-118"
	_, err = s.AddBatch(ctx, other)
	require.NoError(t, err)

	t.Run("replaces in place and keeps id", func(t *testing.T) {
		edited := created.Batch
		edited.MeterValue = 800
		edited.Status = models.StatusCompleted

		updated, err := s.UpdateBatch(ctx, edited)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, models.StatusCompleted, updated.Status)
		assert.Equal(t, 200, updated.FTotal)
		assert.Len(t, s.Batches(), 2)
	})

	t.Run("invalid status keeps stored status", func(t *testing.T) {
		edited := created.Batch
		edited.MeterValue = 800
		edited.Status = "finished-ish"

		updated, err := s.UpdateBatch(ctx, edited)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, updated.Status)
	})

	t.Run("duplicate number against other batch rejected", func(t *testing.T) {
		edited := created.Batch
		edited.BatchNumber = "ct-118" // case-insensitive collision

		_, err := s.UpdateBatch(ctx, edited)
		assert.ErrorIs(t, err, ErrDuplicateBatchNumber)
	})

	t.Run("padded duplicate number rejected", func(t *testing.T) {
		edited := created.Batch
		edited.BatchNumber = "  ct-118  " // trimmed before the collision check

		_, err := s.UpdateBatch(ctx, edited)
		assert.ErrorIs(t, err, ErrDuplicateBatchNumber)
	})

	t.Run("unknown id rejected", func(t *testing.T) {
		ghost := created.Batch
		ghost.ID = "nope"
		_, err := s.UpdateBatch(ctx, ghost)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown id wins over duplicate number", func(t *testing.T) {
		ghost := created.Batch
		ghost.ID = "nope"
		ghost.BatchNumber = "CT-118" // collides, but the id does not exist

		_, err := s.UpdateBatch(ctx, ghost)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteBatch(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddBatch(ctx, validInput())
	require.NoError(t, err)
	in := validInput()
	in.BatchNumber = "CT-118"
	b, err := s.AddBatch(ctx, in)
	require.NoError(t, err)

	require.NoError(t, s.DeleteBatch(ctx, a.ID))

	remaining := s.Batches()
	require.Len(t, remaining, 1)
	assert.Equal(t, b.ID, remaining[0].ID, "only the targeted id is removed")

	// The legacy behavior was a silent no-op; missing ids now signal.
	err = s.DeleteBatch(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, s.Batches(), 1)
}

func TestBatchTypes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.AddBatchType(ctx, BatchTypeInput{BatchNumber: "LN-2041", Color: "#1e3a8a"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	t.Run("case-insensitive duplicate rejected", func(t *testing.T) {
		_, err := s.AddBatchType(ctx, BatchTypeInput{BatchNumber: "ln-2041", Color: "#000000"})
		assert.ErrorIs(t, err, ErrDuplicateBatchNumber)
	})

	t.Run("distinct number succeeds and lists", func(t *testing.T) {
		_, err := s.AddBatchType(ctx, BatchTypeInput{BatchNumber: "CT-118", Color: "#9a3412"})
		require.NoError(t, err)
		assert.Len(t, s.BatchTypes(), 2)
	})

	t.Run("update suppresses notification", func(t *testing.T) {
		s.mu.Lock()
		s.notification = ""
		s.mu.Unlock()

		created.Color = "#ff0000"
		require.NoError(t, s.UpdateBatchType(ctx, created))
		assert.Empty(t, s.Notification())
	})

	t.Run("delete does not cascade to batches", func(t *testing.T) {
		_, err := s.AddBatch(ctx, validInput())
		require.NoError(t, err)

		require.NoError(t, s.DeleteBatchType(ctx, created.ID))
		assert.Len(t, s.BatchTypes(), 1)
		assert.Len(t, s.Batches(), 1)
	})

	t.Run("delete unknown id signals", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteBatchType(ctx, "ghost"), ErrNotFound)
	})
}

func TestNotificationWindow(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddBatch(ctx, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, s.Notification())

	// A later notification restarts the window; the first timer firing must
	// not clear the newer message.
	time.Sleep(20 * time.Millisecond)
	in := validInput()
	in.BatchNumber = "CT-118"
	_, err = s.AddBatch(ctx, in)
	require.NoError(t, err)

	time.Sleep(15 * time.Millisecond)
	assert.Contains(t, s.Notification(), "CT-118", "last write wins across overlapping windows")

	assert.Eventually(t, func() bool { return s.Notification() == "" }, time.Second, 5*time.Millisecond)
}

func TestSeeding_OncePerInstall(t *testing.T) {
	ctx := context.Background()
	repo := blobstore.NewMemory()

	s := New(ctx, repo, zap.NewNop())
	require.NoError(t, s.CompleteSetup(ctx, models.Settings{CompanyName: "Aurora Textiles", NumberOfMachines: 3}))
	seeded := s.Batches()
	require.NotEmpty(t, seeded, "fresh setup seeds the demo dataset")
	require.NotEmpty(t, s.BatchTypes())

	// Deliberately delete everything.
	for _, b := range seeded {
		require.NoError(t, s.DeleteBatch(ctx, b.ID))
	}
	require.Empty(t, s.Batches())

	// Reloading from the same repository must not resurrect the demo data.
	reloaded := New(ctx, repo, zap.NewNop())
	assert.Empty(t, reloaded.Batches(), "seed marker prevents re-seeding an emptied install")
}

func TestNew_MalformedBlobFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	repo := blobstore.NewMemory()
	require.NoError(t, repo.Set(ctx, blobstore.KeySeeded, true))
	repo.SetRaw(blobstore.KeyBatches, []byte(`{"not":"an array"`))
	repo.SetRaw(blobstore.KeyTheme, []byte(`"mauve"`))

	s := New(ctx, repo, zap.NewNop())
	assert.Empty(t, s.Batches())
	assert.Equal(t, models.ThemeLight, s.Theme())
}

func TestPersistenceFailureKeepsMemoryAuthoritative(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	repo.FailWrites = true
	created, err := s.AddBatch(ctx, validInput())
	require.NoError(t, err, "write failures never block the user")
	assert.Len(t, s.Batches(), 1)

	repo.FailWrites = false
	_, err = s.Batch(created.ID)
	assert.NoError(t, err)
}

func TestToggleTheme(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, models.ThemeDark, s.ToggleTheme(ctx))
	assert.Equal(t, models.ThemeLight, s.ToggleTheme(ctx))
	assert.GreaterOrEqual(t, repo.Writes(blobstore.KeyTheme), 2)
}

func TestMachineBuckets(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i, machine := range []int{1, 1, 2} {
		in := validInput()
		in.BatchNumber = in.BatchNumber + string(rune('a'+i))
		in.MachineNumber = machine
		_, err := s.AddBatch(ctx, in)
		require.NoError(t, err)
	}

	buckets, err := s.MachineBuckets()
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Len(t, buckets[0].Batches, 2)
	assert.Len(t, buckets[1].Batches, 1)
	assert.Len(t, buckets[2].Batches, 0)
}

func TestReplaceAll_RestoresBackup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddBatch(ctx, validInput())
	require.NoError(t, err)
	original := s.Batches()
	settings := s.Settings()

	// Wipe, then restore.
	require.NoError(t, s.ReplaceAll(ctx, nil, nil))
	assert.True(t, s.SetupRequired())
	assert.Empty(t, s.Batches())

	require.NoError(t, s.ReplaceAll(ctx, settings, original))
	assert.Equal(t, original, s.Batches())
	assert.Equal(t, settings, s.Settings())
}
