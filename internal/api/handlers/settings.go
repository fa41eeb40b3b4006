package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gauged/internal/engine"
)

// SettingsEngine interface for reading and replacing live sync settings
type SettingsEngine interface {
	Settings() engine.SyncSettings
	UpdateSettings(settings engine.SyncSettings)
}

// SettingsStore interface for persisting settings across restarts
type SettingsStore interface {
	Save(settings engine.SyncSettings) error
}

// SettingsHandler handles sync settings requests
type SettingsHandler struct {
	engine SettingsEngine
	store  SettingsStore
	logger *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(engine SettingsEngine, store SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// GetSettings returns the current sync settings
// GET /settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings := h.engine.Settings()
	c.JSON(http.StatusOK, gin.H{
		"default_interval_seconds": settings.DefaultIntervalSeconds,
		"low_battery_threshold":    settings.LowBatteryThreshold,
		"debug_logging_enabled":    settings.DebugLoggingEnabled,
	})
}

// UpdateSettings replaces the sync settings. Out-of-range values are
// clamped, not rejected. The new values apply from the next cycle.
// PUT /settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		DefaultIntervalSeconds int     `json:"default_interval_seconds" binding:"required"`
		LowBatteryThreshold    float64 `json:"low_battery_threshold"`
		DebugLoggingEnabled    bool    `json:"debug_logging_enabled"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	settings := engine.NewSyncSettings(req.DefaultIntervalSeconds, req.LowBatteryThreshold, req.DebugLoggingEnabled)
	h.engine.UpdateSettings(settings)

	if err := h.store.Save(settings); err != nil {
		h.logger.Error("Failed to persist settings",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to persist settings",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"default_interval_seconds": settings.DefaultIntervalSeconds,
		"low_battery_threshold":    settings.LowBatteryThreshold,
		"debug_logging_enabled":    settings.DebugLoggingEnabled,
	})
}
