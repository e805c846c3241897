package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/store"
)

// DashboardHandler serves the bootstrap state, theme and notification
// endpoints consumed by every page.
type DashboardHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(st *store.Store, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{store: st, logger: logger}
}

// State returns the full dashboard bootstrap snapshot.
func (h *DashboardHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// Notification returns the current transient notification, empty once the
// window has elapsed.
func (h *DashboardHandler) Notification(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notification": h.store.Notification()})
}

// ToggleTheme flips light/dark and returns the active theme.
func (h *DashboardHandler) ToggleTheme(c *gin.Context) {
	theme := h.store.ToggleTheme(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
