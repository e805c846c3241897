package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/repository/blobstore"
	"github.com/mamadbah2/milltrack/internal/server/handlers"
	"github.com/mamadbah2/milltrack/internal/service/summary"
	"github.com/mamadbah2/milltrack/internal/store"
)

func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	ctx := context.Background()

	repo := blobstore.NewMemory()
	require.NoError(t, repo.Set(ctx, blobstore.KeySeeded, true))

	st := store.New(ctx, repo, zap.NewNop())
	summarySvc := summary.NewService(nil, st.Notify, nil) // no API key configured
	h := handlers.NewSet(st, summarySvc, zap.NewNop())
	return New(h, []string{"*"}, zap.NewNop()), st
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func completeSetup(t *testing.T, engine *gin.Engine) {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/setup", gin.H{
		"companyName":      "Aurora Textiles",
		"numberOfMachines": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func batchBody(number string, machine int) gin.H {
	return gin.H{
		"batchNumber":   number,
		"machineNumber": machine,
		"startDate":     "2026-08-10",
		"endDate":       "2026-08-18",
		"meterValue":    1250.5,
		"color":         "#1e3a8a",
	}
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestServer(t)
	w := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupGatesTheApp(t *testing.T) {
	engine, _ := newTestServer(t)

	var state struct {
		SetupRequired bool `json:"setupRequired"`
	}
	w := doJSON(t, engine, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.True(t, state.SetupRequired)

	// Mutations are rejected until setup completes.
	w = doJSON(t, engine, http.MethodPost, "/api/batches", batchBody("LN-2041", 1))
	assert.Equal(t, http.StatusConflict, w.Code)

	completeSetup(t, engine)

	w = doJSON(t, engine, http.MethodGet, "/api/state", nil)
	decode(t, w, &state)
	assert.False(t, state.SetupRequired)
}

func TestBatchLifecycle(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	// Create: status on the body is ignored, ftotal/average derived.
	w := doJSON(t, engine, http.MethodPost, "/api/batches", batchBody("LN-2041", 1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID      string  `json:"id"`
		Status  string  `json:"status"`
		FTotal  int     `json:"ftotal"`
		Average float64 `json:"average"`
	}
	decode(t, w, &created)
	assert.Equal(t, "in-progress", created.Status)
	assert.Equal(t, 313, created.FTotal)
	assert.Equal(t, 4.0, created.Average)

	// Update preserves the id and accepts a status change.
	body := batchBody("LN-2041", 2)
	body["status"] = "completed"
	w = doJSON(t, engine, http.MethodPut, "/api/batches/"+created.ID, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, w, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "completed", updated.Status)

	// Delete removes it; a second delete is a 404.
	w = doJSON(t, engine, http.MethodDelete, "/api/batches/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, engine, http.MethodDelete, "/api/batches/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatchValidationErrors(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	// Binding catches missing/zero fields before the container runs.
	body := batchBody("LN-2041", 1)
	body["meterValue"] = 0
	w := doJSON(t, engine, http.MethodPost, "/api/batches", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The container reports field-level errors for in-range shapes.
	body = batchBody("LN-2041", 7) // only 3 machines configured
	w = doJSON(t, engine, http.MethodPost, "/api/batches", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &resp)
	assert.Contains(t, resp.Fields, "machineNumber")

	// Malformed dates are field-level too.
	body = batchBody("LN-2041", 1)
	body["startDate"] = "10/08/2026"
	w = doJSON(t, engine, http.MethodPost, "/api/batches", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &resp)
	assert.Contains(t, resp.Fields, "startDate")
}

func TestBatchTypeDuplicateConflict(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/batch-types", gin.H{"batchNumber": "LN-2041", "color": "#1e3a8a"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/batch-types", gin.H{"batchNumber": "ln-2041", "color": "#000000"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMachinesEndpoint(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	for _, machine := range []int{1, 1, 2} {
		w := doJSON(t, engine, http.MethodPost, "/api/batches", batchBody("B-"+strings.Repeat("x", machine), machine))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Machines []struct {
			MachineNumber int `json:"machineNumber"`
			Batches       []struct {
				ID string `json:"id"`
			} `json:"batches"`
		} `json:"machines"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Machines, 3)
	assert.Len(t, resp.Machines[0].Batches, 2)
	assert.Len(t, resp.Machines[1].Batches, 1)
	assert.Len(t, resp.Machines[2].Batches, 0)
}

func TestMonthlyReportEndpoint(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/batches", batchBody("LN-2041", 1))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/reports/monthly?year=2026&month=8", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		Month        string  `json:"month"`
		TotalBatches int     `json:"totalBatches"`
		TotalMeter   float64 `json:"totalMeter"`
	}
	decode(t, w, &report)
	assert.Equal(t, "August 2026", report.Month)
	assert.Equal(t, 1, report.TotalBatches)
	assert.Equal(t, 1250.5, report.TotalMeter)

	// Empty month: zero totals, no error.
	w = doJSON(t, engine, http.MethodGet, "/api/reports/monthly?year=2026&month=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &report)
	assert.Zero(t, report.TotalBatches)

	w = doJSON(t, engine, http.MethodGet, "/api/reports/monthly?year=2026&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExports(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/batches", batchBody("LN-2041", 1))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	t.Run("machine csv", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/export/machines/1/csv", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "machine-1.csv")
		assert.Contains(t, w.Body.String(), "LN-2041")
	})

	t.Run("machine out of range", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/export/machines/9/csv", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("monthly xlsx", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/export/reports/monthly/xlsx?year=2026&month=8", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.Bytes())
	})

	t.Run("bill pdf", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/export/bill/"+created.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("bill unknown batch", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/export/bill/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	engine, st := newTestServer(t)
	completeSetup(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/batches", batchBody("LN-2041", 1))
	require.Equal(t, http.StatusCreated, w.Code)
	original := st.Batches()

	w = doJSON(t, engine, http.MethodGet, "/api/export/backup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	backup := w.Body.Bytes()

	// Wipe the batch, then restore the backup over the wire.
	require.NoError(t, st.DeleteBatch(context.Background(), original[0].ID))
	require.Empty(t, st.Batches())

	req := httptest.NewRequest(http.MethodPost, "/api/restore", bytes.NewReader(backup))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, original, st.Batches())
}

func TestSummaryDisabledWithoutAPIKey(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/reports/monthly/summary?year=2026&month=8", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Status string `json:"status"`
	}
	decode(t, w, &state)
	assert.Equal(t, "idle", state.Status)
}

func TestThemeToggleAndNotification(t *testing.T) {
	engine, _ := newTestServer(t)
	completeSetup(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/theme/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var theme struct {
		Theme string `json:"theme"`
	}
	decode(t, w, &theme)
	assert.Equal(t, "dark", theme.Theme)

	w = doJSON(t, engine, http.MethodGet, "/api/notification", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notif struct {
		Notification string `json:"notification"`
	}
	decode(t, w, &notif)
	assert.Equal(t, "Setup completed", notif.Notification)
}
