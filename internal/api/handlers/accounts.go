package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gauged/internal/core"
	"gauged/internal/idgen"
	"gauged/internal/secrets"
	"gauged/internal/storage"
)

// AccountsHandler handles account-related requests
type AccountsHandler struct {
	storage storage.Storage
	secrets secrets.Store
	logger  *slog.Logger
}

// NewAccountsHandler creates a new accounts handler
func NewAccountsHandler(storage storage.Storage, secrets secrets.Store, logger *slog.Logger) *AccountsHandler {
	return &AccountsHandler{
		storage: storage,
		secrets: secrets,
		logger:  logger,
	}
}

// ListAccounts returns all accounts
// GET /accounts
func (h *AccountsHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.storage.ListAccounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve accounts",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	response := make([]gin.H, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, formatAccount(account))
	}

	c.JSON(http.StatusOK, response)
}

// CreateAccount registers a new provider account
// POST /accounts
func (h *AccountsHandler) CreateAccount(c *gin.Context) {
	var req struct {
		Provider            string `json:"provider" binding:"required"`
		DisplayName         string `json:"display_name" binding:"required"`
		WorkspaceIdentifier string `json:"workspace_identifier"`
		AuthType            string `json:"auth_type" binding:"required"`
		SyncEnabled         *bool  `json:"sync_enabled"`
		SyncIntervalSeconds int    `json:"sync_interval_seconds"`
		Credential          string `json:"credential"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	authType := core.AuthType(req.AuthType)
	if authType != core.AuthTypeAPIKey && authType != core.AuthTypeSession && authType != core.AuthTypeManual {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown auth type",
			"code":  "INVALID_AUTH_TYPE",
		})
		return
	}

	now := time.Now()
	syncEnabled := true
	if req.SyncEnabled != nil {
		syncEnabled = *req.SyncEnabled
	}

	account := &core.Account{
		ID:                  idgen.NewAccount(),
		Provider:            core.Provider(req.Provider),
		DisplayName:         req.DisplayName,
		WorkspaceIdentifier: req.WorkspaceIdentifier,
		AuthType:            authType,
		SyncEnabled:         syncEnabled,
		SyncIntervalSeconds: req.SyncIntervalSeconds,
		Status:              core.AccountStatusUnknown,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if req.Credential != "" && authType != core.AuthTypeManual {
		account.CredentialRef = secrets.CredentialRef(account.ID, authType)
	}

	if err := account.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid account",
			"code":    "VALIDATION_ERROR",
			"details": err.Error(),
		})
		return
	}

	if account.CredentialRef != "" {
		if err := h.secrets.Put(c.Request.Context(), account.CredentialRef, req.Credential); err != nil {
			h.logger.Error("Failed to store credential",
				"component", "api",
				"account_id", account.ID,
				"error", err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to store credential",
				"code":  "INTERNAL_ERROR",
			})
			return
		}
	}

	if err := h.storage.UpsertAccount(c.Request.Context(), account); err != nil {
		h.logger.Error("Failed to create account",
			"component", "api",
			"account_id", account.ID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	h.logger.Info("Account created",
		"component", "api",
		"account_id", account.ID,
		"provider", account.Provider,
	)

	c.JSON(http.StatusCreated, formatAccount(account))
}

// GetAccount returns a single account by ID
// GET /accounts/:id
func (h *AccountsHandler) GetAccount(c *gin.Context) {
	accountID := c.Param("id")

	account, err := h.storage.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
				"code":  "ACCOUNT_NOT_FOUND",
			})
			return
		}

		h.logger.Error("Failed to get account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, formatAccount(account))
}

// UpdateAccount applies a partial update to an account
// PATCH /accounts/:id
func (h *AccountsHandler) UpdateAccount(c *gin.Context) {
	accountID := c.Param("id")

	var req struct {
		DisplayName         *string `json:"display_name"`
		WorkspaceIdentifier *string `json:"workspace_identifier"`
		SyncEnabled         *bool   `json:"sync_enabled"`
		SyncIntervalSeconds *int    `json:"sync_interval_seconds"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	account, err := h.storage.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
				"code":  "ACCOUNT_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to get account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	if req.DisplayName != nil {
		account.DisplayName = *req.DisplayName
	}
	if req.WorkspaceIdentifier != nil {
		account.WorkspaceIdentifier = *req.WorkspaceIdentifier
	}
	if req.SyncEnabled != nil {
		account.SyncEnabled = *req.SyncEnabled
	}
	if req.SyncIntervalSeconds != nil {
		account.SyncIntervalSeconds = *req.SyncIntervalSeconds
	}
	account.UpdatedAt = time.Now()

	if err := account.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid account",
			"code":    "VALIDATION_ERROR",
			"details": err.Error(),
		})
		return
	}

	if err := h.storage.UpsertAccount(c.Request.Context(), account); err != nil {
		h.logger.Error("Failed to update account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, formatAccount(account))
}

// DeleteAccount removes an account, its history and its stored credential
// DELETE /accounts/:id
func (h *AccountsHandler) DeleteAccount(c *gin.Context) {
	accountID := c.Param("id")

	account, err := h.storage.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
				"code":  "ACCOUNT_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to get account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	if account.CredentialRef != "" {
		if err := h.secrets.Delete(c.Request.Context(), account.CredentialRef); err != nil {
			// The account row still goes away; an orphaned secret is logged.
			h.logger.Error("Failed to delete credential",
				"component", "api",
				"account_id", accountID,
				"error", err,
			)
		}
	}

	if err := h.storage.DeleteAccount(c.Request.Context(), accountID); err != nil {
		h.logger.Error("Failed to delete account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	h.logger.Info("Account deleted",
		"component", "api",
		"account_id", accountID,
	)

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// PutCredential stores or replaces an account's credential
// PUT /accounts/:id/credential
func (h *AccountsHandler) PutCredential(c *gin.Context) {
	accountID := c.Param("id")

	var req struct {
		Credential string `json:"credential" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	account, err := h.storage.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
				"code":  "ACCOUNT_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to get account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	if account.AuthType == core.AuthTypeManual {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Manual accounts carry no credential",
			"code":  "INVALID_AUTH_TYPE",
		})
		return
	}

	ref := secrets.CredentialRef(account.ID, account.AuthType)
	if err := h.secrets.Put(c.Request.Context(), ref, req.Credential); err != nil {
		h.logger.Error("Failed to store credential",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store credential",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	// A fresh credential resets the validation state until the next sync.
	account.CredentialRef = ref
	account.Status = core.AccountStatusUnknown
	account.LastError = ""
	account.UpdatedAt = time.Now()

	if err := h.storage.UpsertAccount(c.Request.Context(), account); err != nil {
		h.logger.Error("Failed to update account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, formatAccount(account))
}

// DeleteCredential removes an account's stored credential
// DELETE /accounts/:id/credential
func (h *AccountsHandler) DeleteCredential(c *gin.Context) {
	accountID := c.Param("id")

	account, err := h.storage.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
				"code":  "ACCOUNT_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to get account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	if account.CredentialRef != "" {
		if err := h.secrets.Delete(c.Request.Context(), account.CredentialRef); err != nil {
			h.logger.Error("Failed to delete credential",
				"component", "api",
				"account_id", accountID,
				"error", err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete credential",
				"code":  "INTERNAL_ERROR",
			})
			return
		}
	}

	account.CredentialRef = ""
	account.Status = core.AccountStatusUnknown
	account.UpdatedAt = time.Now()

	if err := h.storage.UpsertAccount(c.Request.Context(), account); err != nil {
		h.logger.Error("Failed to update account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListSnapshots returns the most recent usage snapshots for an account
// GET /accounts/:id/snapshots
func (h *AccountsHandler) ListSnapshots(c *gin.Context) {
	accountID := c.Param("id")
	limit := parseLimit(c)

	if _, err := h.storage.GetAccount(c.Request.Context(), accountID); err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
				"code":  "ACCOUNT_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to get account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	snapshots, err := h.storage.RecentSnapshots(c.Request.Context(), accountID, limit)
	if err != nil {
		h.logger.Error("Failed to list snapshots",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve snapshots",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	response := make([]gin.H, 0, len(snapshots))
	for _, snapshot := range snapshots {
		response = append(response, gin.H{
			"id":              snapshot.ID,
			"account_id":      snapshot.AccountID,
			"provider":        snapshot.Provider,
			"window_type":     snapshot.WindowType,
			"window_start":    snapshot.WindowStart.Format(time.RFC3339),
			"window_end":      snapshot.WindowEnd.Format(time.RFC3339),
			"used":            snapshot.UsedValue,
			"used_unit":       snapshot.UsedUnit,
			"limit":           snapshot.LimitValue,
			"limit_unit":      snapshot.LimitUnit,
			"remaining":       snapshot.RemainingValue,
			"battery_percent": snapshot.BatteryPercent,
			"source":          snapshot.Source,
			"confidence":      snapshot.Confidence,
			"fetched_at":      snapshot.FetchedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// ListRuns returns the most recent sync runs for an account
// GET /accounts/:id/runs
func (h *AccountsHandler) ListRuns(c *gin.Context) {
	accountID := c.Param("id")
	limit := parseLimit(c)

	if _, err := h.storage.GetAccount(c.Request.Context(), accountID); err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
				"code":  "ACCOUNT_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to get account",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve account",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	runs, err := h.storage.ListSyncRuns(c.Request.Context(), accountID, limit)
	if err != nil {
		h.logger.Error("Failed to list sync runs",
			"component", "api",
			"account_id", accountID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve sync runs",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	response := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		entry := gin.H{
			"id":          run.ID,
			"account_id":  run.AccountID,
			"started_at":  run.StartedAt.Format(time.RFC3339),
			"ended_at":    run.EndedAt.Format(time.RFC3339),
			"result":      run.Result,
			"retry_count": run.RetryCount,
		}
		if run.Result == core.SyncResultFailure {
			entry["error_kind"] = run.ErrorKind
			entry["error_message"] = run.ErrorMessage
		}
		response = append(response, entry)
	}

	c.JSON(http.StatusOK, response)
}

// formatAccount renders an account for API responses. The credential
// reference is internal and never leaves the daemon.
func formatAccount(account *core.Account) gin.H {
	response := gin.H{
		"id":                    account.ID,
		"provider":              account.Provider,
		"display_name":          account.DisplayName,
		"workspace_identifier":  account.WorkspaceIdentifier,
		"auth_type":             account.AuthType,
		"sync_enabled":          account.SyncEnabled,
		"sync_interval_seconds": account.SyncIntervalSeconds,
		"has_credential":        account.CredentialRef != "",
		"status":                account.Status,
		"last_error":            account.LastError,
		"created_at":            account.CreatedAt.Format(time.RFC3339),
		"updated_at":            account.UpdatedAt.Format(time.RFC3339),
	}
	if account.LastValidatedAt != nil {
		response["last_validated_at"] = account.LastValidatedAt.Format(time.RFC3339)
	}
	if account.ExpiresAt != nil {
		response["expires_at"] = account.ExpiresAt.Format(time.RFC3339)
	}
	return response
}

func parseLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
