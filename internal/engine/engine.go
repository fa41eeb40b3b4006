package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"gauged/internal/core"
	"gauged/internal/idgen"
	"gauged/internal/logging"
	"gauged/internal/notify"
	"gauged/internal/providers"
)

// A failure alert is raised once an account's retry counter reaches this value.
const failureAlertThreshold = 3

// Storage interface for engine operations
type Storage interface {
	FetchEnabledAccounts(ctx context.Context) ([]*core.Account, error)
	UpsertAccount(ctx context.Context, account *core.Account) error
	InsertSnapshot(ctx context.Context, snapshot *core.UsageSnapshot) error
	InsertBatteryStatus(ctx context.Context, status *core.BatteryStatus) error
	InsertSyncRun(ctx context.Context, run *core.SyncRun) error
}

// AdapterRegistry interface for looking up provider adapters
type AdapterRegistry interface {
	Lookup(provider core.Provider) (providers.Adapter, error)
}

// SecretStore interface for resolving account credentials
type SecretStore interface {
	Get(ctx context.Context, ref string) (string, error)
}

// Notifier interface for delivering alerts
type Notifier interface {
	Deliver(ctx context.Context, key, title, body string) error
}

// Debouncer interface for alert rate limiting
type Debouncer interface {
	ShouldSend(key string) bool
}

// Engine runs the periodic sync loop across all enabled accounts
type Engine struct {
	storage   Storage
	registry  AdapterRegistry
	secrets   SecretStore
	notifier  Notifier
	debouncer Debouncer
	logger    *slog.Logger

	settingsMu sync.RWMutex
	settings   SyncSettings

	retryMu     sync.Mutex
	retryCounts map[string]int

	stopChan chan struct{}

	// Overridable in tests
	sleep  func(time.Duration)
	jitter func() int
}

// Config holds the dependencies for an Engine
type Config struct {
	Storage   Storage
	Registry  AdapterRegistry
	Secrets   SecretStore
	Notifier  Notifier
	Debouncer Debouncer
	Settings  SyncSettings
	Logger    *slog.Logger
}

// New creates a new sync engine
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage:     cfg.Storage,
		registry:    cfg.Registry,
		secrets:     cfg.Secrets,
		notifier:    cfg.Notifier,
		debouncer:   cfg.Debouncer,
		logger:      logger,
		settings:    cfg.Settings,
		retryCounts: make(map[string]int),
		stopChan:    make(chan struct{}),
		sleep:       time.Sleep,
		jitter:      func() int { return rand.Intn(16) },
	}
}

// Settings returns the current sync settings
func (e *Engine) Settings() SyncSettings {
	e.settingsMu.RLock()
	defer e.settingsMu.RUnlock()
	return e.settings
}

// UpdateSettings replaces the sync settings. The new values take effect for
// the next cycle.
func (e *Engine) UpdateSettings(settings SyncSettings) {
	e.settingsMu.Lock()
	defer e.settingsMu.Unlock()
	e.settings = settings
	e.logger.Info("Sync settings updated",
		"interval_seconds", settings.DefaultIntervalSeconds,
		"low_battery_threshold", settings.LowBatteryThreshold,
		"debug_logging", settings.DebugLoggingEnabled)
}

// Start begins the sync loop. It blocks until Stop is called.
func (e *Engine) Start() {
	e.logger.Info("Sync engine started")
	for {
		e.RunOnce(context.Background())

		// Random jitter spreads cycles out so accounts of several daemons
		// don't hammer a provider at the same instant.
		interval := time.Duration(e.Settings().DefaultIntervalSeconds+e.jitter()) * time.Second
		select {
		case <-time.After(interval):
		case <-e.stopChan:
			e.logger.Info("Sync engine stopped")
			return
		}
	}
}

// Stop stops the sync loop
func (e *Engine) Stop() {
	close(e.stopChan)
}

// RunOnce performs one sync cycle: every enabled account is synced in its
// own goroutine, and the call returns when all of them have finished.
func (e *Engine) RunOnce(ctx context.Context) {
	accounts, err := e.storage.FetchEnabledAccounts(ctx)
	if err != nil {
		e.logger.Error("Failed to fetch enabled accounts", "error", err)
		return
	}

	e.debugLog("Sync cycle starting", "accounts", len(accounts))

	var wg sync.WaitGroup
	for _, account := range accounts {
		wg.Add(1)
		go func(account *core.Account) {
			defer wg.Done()
			e.syncAccount(ctx, account)
		}(account)
	}
	wg.Wait()
}

// RetryCount returns the in-memory retry counter for an account
func (e *Engine) RetryCount(accountID string) int {
	e.retryMu.Lock()
	defer e.retryMu.Unlock()
	return e.retryCounts[accountID]
}

// syncAccount performs a full sync for a single account
func (e *Engine) syncAccount(ctx context.Context, account *core.Account) {
	startedAt := time.Now()
	retryCount := e.RetryCount(account.ID)
	window := core.RollingWindow(startedAt)

	e.debugLog("Syncing account",
		"account_id", account.ID,
		"provider", account.Provider,
		"retry_count", retryCount)

	adapter, err := e.registry.Lookup(account.Provider)
	if err != nil {
		e.recordFailure(ctx, account, startedAt, core.NewUnsupportedProviderError(account.Provider))
		return
	}

	credential := e.resolveCredential(ctx, account)

	if err := adapter.ValidateCredentials(account, credential); err != nil {
		e.recordFailure(ctx, account, startedAt, err)
		return
	}

	raw, err := adapter.FetchUsage(ctx, account, window, credential)
	if err != nil {
		e.recordFailure(ctx, account, startedAt, err)
		return
	}

	snapshot, err := adapter.Normalize(raw)
	if err != nil {
		e.recordFailure(ctx, account, startedAt, err)
		return
	}

	if err := e.storage.InsertSnapshot(ctx, snapshot); err != nil {
		e.recordFailure(ctx, account, startedAt, core.NewStorageError("failed to persist snapshot", err))
		return
	}

	settings := e.Settings()
	status, err := core.NewBatteryStatus(idgen.NewStatus(), account.ID, snapshot.BatteryPercent, settings.LowBatteryThreshold, time.Now())
	if err != nil {
		e.recordFailure(ctx, account, startedAt, core.NewValidationError(err))
		return
	}
	if err := e.storage.InsertBatteryStatus(ctx, status); err != nil {
		e.recordFailure(ctx, account, startedAt, core.NewStorageError("failed to persist battery status", err))
		return
	}

	// The successful run is recorded with the counter it ran under; the
	// reset happens afterwards.
	run := &core.SyncRun{
		ID:         idgen.NewSyncRun(),
		AccountID:  account.ID,
		StartedAt:  startedAt,
		EndedAt:    time.Now(),
		Result:     core.SyncResultSuccess,
		RetryCount: retryCount,
	}
	if err := e.storage.InsertSyncRun(ctx, run); err != nil {
		e.logger.Error("Failed to persist sync run", "account_id", account.ID, "error", err)
	}

	e.setRetryCount(account.ID, 0)
	e.markAccountSynced(ctx, account)

	e.logger.Info("Account synced",
		"account_id", account.ID,
		"provider", account.Provider,
		"battery_percent", status.BatteryPercent,
		"is_low", status.IsLow)

	if status.IsLow {
		title := "gauged: Low battery"
		body := fmt.Sprintf("%s is at %d%%.", account.DisplayName, int(status.BatteryPercent))
		e.requestAlert(ctx, notify.AlertLowBattery, account.ID, title, body)
	}
}

// recordFailure persists a failed run, bumps the retry counter and applies
// the backoff delay before the goroutine returns.
func (e *Engine) recordFailure(ctx context.Context, account *core.Account, startedAt time.Time, cause error) {
	newRetry := e.bumpRetryCount(account.ID)
	kind := core.Classify(cause)
	message := logging.Redact(cause.Error())

	run := &core.SyncRun{
		ID:           idgen.NewSyncRun(),
		AccountID:    account.ID,
		StartedAt:    startedAt,
		EndedAt:      time.Now(),
		Result:       core.SyncResultFailure,
		ErrorKind:    kind,
		ErrorMessage: message,
		RetryCount:   newRetry,
	}
	if err := e.storage.InsertSyncRun(ctx, run); err != nil {
		e.logger.Error("Failed to persist sync run", "account_id", account.ID, "error", err)
	}

	account.LastError = message
	if kind == core.ErrorKindAuth {
		account.Status = core.AccountStatusInvalid
	}
	if err := e.storage.UpsertAccount(ctx, account); err != nil {
		e.logger.Error("Failed to update account after sync failure", "account_id", account.ID, "error", err)
	}

	e.logger.Error("Sync failed",
		"account_id", account.ID,
		"provider", account.Provider,
		"error_kind", kind,
		"retry_count", newRetry,
		"error", message)

	if newRetry >= failureAlertThreshold {
		title := "gauged: Sync issue"
		body := fmt.Sprintf("%s: %s", account.DisplayName, message)
		e.requestAlert(ctx, notify.AlertSyncFailure, account.ID, title, body)
	}

	e.sleep(time.Duration(BackoffSeconds(newRetry)) * time.Second)
}

// markAccountSynced records a successful validation on the account row.
// Persistence problems here are logged, not treated as a sync failure.
func (e *Engine) markAccountSynced(ctx context.Context, account *core.Account) {
	now := time.Now()
	account.Status = core.AccountStatusValid
	account.LastError = ""
	account.LastValidatedAt = &now
	if err := e.storage.UpsertAccount(ctx, account); err != nil {
		e.logger.Error("Failed to update account after sync", "account_id", account.ID, "error", err)
	}
}

// resolveCredential fetches the account's secret. Manual accounts carry no
// credential. A missing secret resolves to an empty string so that the
// adapter reports it as an auth failure.
func (e *Engine) resolveCredential(ctx context.Context, account *core.Account) string {
	if account.AuthType == core.AuthTypeManual || account.CredentialRef == "" {
		return ""
	}
	secret, err := e.secrets.Get(ctx, account.CredentialRef)
	if err != nil {
		e.logger.Warn("Failed to resolve credential", "account_id", account.ID, "error", err)
		return ""
	}
	return secret
}

// requestAlert delivers an alert unless the debouncer suppresses it.
// Delivery is best-effort: the debounce window starts when ShouldSend
// approves the send, so a failed delivery still counts and a flapping
// notifier cannot cause alert storms.
func (e *Engine) requestAlert(ctx context.Context, kind notify.AlertKind, accountID, title, body string) {
	key := notify.Key(kind, accountID)
	if !e.debouncer.ShouldSend(key) {
		e.debugLog("Alert debounced", "key", key)
		return
	}
	if err := e.notifier.Deliver(ctx, key, title, body); err != nil {
		e.logger.Warn("Failed to deliver alert", "key", key, "error", err)
	}
}

func (e *Engine) bumpRetryCount(accountID string) int {
	e.retryMu.Lock()
	defer e.retryMu.Unlock()
	next := e.retryCounts[accountID] + 1
	if next > core.RetryCountCap {
		next = core.RetryCountCap
	}
	e.retryCounts[accountID] = next
	return next
}

func (e *Engine) setRetryCount(accountID string, count int) {
	e.retryMu.Lock()
	defer e.retryMu.Unlock()
	e.retryCounts[accountID] = count
}

func (e *Engine) debugLog(msg string, args ...any) {
	if e.Settings().DebugLoggingEnabled {
		e.logger.Debug(msg, args...)
	}
}

// BackoffSeconds returns the exponential backoff delay for a retry count:
// 1, 2, 4, 8, 16, 32, capped at 64 seconds.
func BackoffSeconds(retryCount int) int {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount > core.RetryCountCap {
		retryCount = core.RetryCountCap
	}
	return 1 << retryCount
}
