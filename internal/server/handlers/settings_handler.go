package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/domain/models"
	"github.com/mamadbah2/milltrack/internal/store"
)

// SettingsHandler serves the setup wizard and the settings form.
type SettingsHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewSettingsHandler constructs the HTTP handler adapter.
func NewSettingsHandler(st *store.Store, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{store: st, logger: logger}
}

type settingsRequest struct {
	CompanyName      string `json:"companyName" binding:"required"`
	NumberOfMachines int    `json:"numberOfMachines" binding:"required,min=1"`
}

// CompleteSetup finishes the first-run wizard: stores the settings and seeds
// the demo dataset exactly once per install.
func (h *SettingsHandler) CompleteSetup(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	settings := models.Settings{CompanyName: req.CompanyName, NumberOfMachines: req.NumberOfMachines}
	if err := h.store.CompleteSetup(c.Request.Context(), settings); err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("setup completed", zap.String("company", settings.CompanyName), zap.Int("machines", settings.NumberOfMachines))
	c.JSON(http.StatusCreated, h.store.Snapshot())
}

// Get returns the current settings, or null before setup.
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.store.Settings()})
}

// Update replaces the settings wholesale.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	settings := models.Settings{CompanyName: req.CompanyName, NumberOfMachines: req.NumberOfMachines}
	if err := h.store.SetSettings(c.Request.Context(), settings); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Reset drops the settings, sending the app back to the setup wizard.
func (h *SettingsHandler) Reset(c *gin.Context) {
	if err := h.store.ClearSettings(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
