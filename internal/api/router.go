package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"gauged/internal/api/handlers"
	"gauged/internal/api/middleware"
	"gauged/internal/secrets"
	"gauged/internal/storage"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Storage       storage.Storage
	Secrets       secrets.Store
	Engine        SyncEngine
	SettingsStore handlers.SettingsStore
	APIKey        string
	Logger        *slog.Logger
}

// SyncEngine bundles the engine operations the API surfaces
type SyncEngine interface {
	handlers.SettingsEngine
	handlers.SyncTrigger
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.Logging(config.Logger))
	router.Use(middleware.ContentType())

	// Health check (no auth)
	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.GetHealth)

	// API v1 routes (with authentication)
	v1 := router.Group("/v1")
	v1.Use(authMiddleware(config.APIKey))
	{
		accountsHandler := handlers.NewAccountsHandler(
			config.Storage,
			config.Secrets,
			config.Logger,
		)
		v1.GET("/accounts", accountsHandler.ListAccounts)
		v1.POST("/accounts", accountsHandler.CreateAccount)
		v1.GET("/accounts/:id", accountsHandler.GetAccount)
		v1.PATCH("/accounts/:id", accountsHandler.UpdateAccount)
		v1.DELETE("/accounts/:id", accountsHandler.DeleteAccount)
		v1.PUT("/accounts/:id/credential", accountsHandler.PutCredential)
		v1.DELETE("/accounts/:id/credential", accountsHandler.DeleteCredential)
		v1.GET("/accounts/:id/snapshots", accountsHandler.ListSnapshots)
		v1.GET("/accounts/:id/runs", accountsHandler.ListRuns)

		statusHandler := handlers.NewStatusHandler(
			config.Storage,
			config.Logger,
		)
		v1.GET("/status", statusHandler.GetStatus)

		settingsHandler := handlers.NewSettingsHandler(
			config.Engine,
			config.SettingsStore,
			config.Logger,
		)
		v1.GET("/settings", settingsHandler.GetSettings)
		v1.PUT("/settings", settingsHandler.UpdateSettings)

		syncHandler := handlers.NewSyncHandler(
			config.Engine,
			config.Logger,
		)
		v1.POST("/sync", syncHandler.TriggerSync)
	}

	return router
}

// authMiddleware verifies API key authentication
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-Gauged-Key")
		if providedKey != apiKey {
			c.JSON(401, gin.H{
				"error": "Unauthorized",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
