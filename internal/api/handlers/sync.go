package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SyncTrigger interface for kicking off a sync cycle
type SyncTrigger interface {
	RunOnce(ctx context.Context)
}

// SyncHandler handles manual sync requests
type SyncHandler struct {
	engine SyncTrigger
	logger *slog.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(engine SyncTrigger, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		engine: engine,
		logger: logger,
	}
}

// TriggerSync starts a sync cycle without waiting for it to finish
// POST /sync
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	h.logger.Info("Manual sync requested",
		"component", "api",
		"request_id", c.GetString("X-Request-ID"),
	)

	// The cycle outlives the HTTP request.
	go h.engine.RunOnce(context.Background())

	c.JSON(http.StatusAccepted, gin.H{"status": "sync started"})
}
