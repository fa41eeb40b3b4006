package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gauged/internal/core"
	"gauged/internal/storage"
)

// StatusHandler handles fleet status requests
type StatusHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(storage storage.Storage, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		storage: storage,
		logger:  logger,
	}
}

// GetStatus returns the latest battery status for every account
// GET /status
func (h *StatusHandler) GetStatus(c *gin.Context) {
	accounts, err := h.storage.ListAccounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve status",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	statuses, err := h.storage.LatestBatteryStatuses(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list battery statuses",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve status",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	byAccount := make(map[string]*core.BatteryStatus, len(statuses))
	for _, status := range statuses {
		byAccount[status.AccountID] = status
	}

	response := make([]gin.H, 0, len(accounts))
	for _, account := range accounts {
		entry := gin.H{
			"account_id":   account.ID,
			"display_name": account.DisplayName,
			"provider":     account.Provider,
			"sync_enabled": account.SyncEnabled,
			"status":       account.Status,
		}
		if status, ok := byAccount[account.ID]; ok {
			entry["battery_percent"] = status.BatteryPercent
			entry["is_low"] = status.IsLow
			entry["health"] = status.Health
			entry["updated_at"] = status.UpdatedAt.Format(time.RFC3339)
		} else {
			// Never synced yet
			entry["health"] = core.HealthUnknown
		}
		response = append(response, entry)
	}

	c.JSON(http.StatusOK, response)
}
