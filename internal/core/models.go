package core

import (
	"errors"
	"strings"
	"time"
)

// Provider identifies an external usage-accounting source
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderCursor Provider = "cursor"
)

// AuthType describes how an account authenticates against its provider
type AuthType string

const (
	AuthTypeAPIKey  AuthType = "api_key"
	AuthTypeSession AuthType = "session"
	AuthTypeManual  AuthType = "manual"
)

// AccountStatus reflects the outcome of the most recent credential check
type AccountStatus string

const (
	AccountStatusValid   AccountStatus = "valid"
	AccountStatusInvalid AccountStatus = "invalid"
	AccountStatusUnknown AccountStatus = "unknown"
)

// WindowType describes the shape of a usage measurement window
type WindowType string

const (
	WindowDaily        WindowType = "daily"
	WindowWeekly       WindowType = "weekly"
	WindowMonthly      WindowType = "monthly"
	WindowRolling30Day WindowType = "rolling_30_day"
)

// UsageSource describes where a usage figure came from
type UsageSource string

const (
	SourceOfficialAPI    UsageSource = "official_api"
	SourceOfficialExport UsageSource = "official_export"
	SourceManual         UsageSource = "manual"
)

// UsageConfidence describes how trustworthy a usage figure is
type UsageConfidence string

const (
	ConfidenceExact     UsageConfidence = "exact"
	ConfidenceEstimated UsageConfidence = "estimated"
	ConfidenceManual    UsageConfidence = "manual"
)

// Health is the coarse per-account health badge derived from battery level
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthDegraded Health = "degraded"
	HealthFailing  Health = "failing"
	HealthUnknown  Health = "unknown"
)

// SyncResult is the outcome of one sync attempt
type SyncResult string

const (
	SyncResultSuccess SyncResult = "success"
	SyncResultFailure SyncResult = "failure"
)

// RetryCountCap is the maximum value the per-account retry counter can reach
const RetryCountCap = 6

// Validation errors
var (
	ErrInvalidDisplayName    = errors.New("display name cannot be empty")
	ErrInvalidSyncInterval   = errors.New("sync interval must be between 30 and 3600 seconds")
	ErrInvalidUsageWindow    = errors.New("usage window start must not be after end")
	ErrInvalidUsageValues    = errors.New("usage values must be non-negative and limit > 0")
	ErrInvalidBatteryPercent = errors.New("battery percent must be between 0 and 100")
	ErrInvalidSyncRunDates   = errors.New("sync run start must not be after end")
	ErrAccountNotFound       = errors.New("account not found")
)

// Account is one external account bound to a provider. Accounts are managed
// through the API; the sync engine reads them and only writes back the
// status/last-error fields after an attempt.
type Account struct {
	ID                  string
	Provider            Provider
	DisplayName         string
	WorkspaceIdentifier string
	AuthType            AuthType
	SyncEnabled         bool
	SyncIntervalSeconds int // 0 means "use the default interval"
	CredentialRef       string
	LastValidatedAt     *time.Time
	ExpiresAt           *time.Time
	Status              AccountStatus
	LastError           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate validates an Account, trimming the display name in place
func (a *Account) Validate() error {
	a.DisplayName = strings.TrimSpace(a.DisplayName)
	if a.DisplayName == "" {
		return ErrInvalidDisplayName
	}
	if a.SyncIntervalSeconds != 0 && (a.SyncIntervalSeconds < 30 || a.SyncIntervalSeconds > 3600) {
		return ErrInvalidSyncInterval
	}
	return nil
}

// UsageWindow is the time span a usage figure covers
type UsageWindow struct {
	Type  WindowType
	Start time.Time
	End   time.Time
}

// NewUsageWindow builds a window, enforcing start <= end
func NewUsageWindow(windowType WindowType, start, end time.Time) (UsageWindow, error) {
	if start.After(end) {
		return UsageWindow{}, ErrInvalidUsageWindow
	}
	return UsageWindow{Type: windowType, Start: start, End: end}, nil
}

// RollingWindow returns the default rolling 30-day window ending at the given instant
func RollingWindow(end time.Time) UsageWindow {
	return UsageWindow{
		Type:  WindowRolling30Day,
		Start: end.AddDate(0, 0, -30),
		End:   end,
	}
}

// RawUsagePayload is what an adapter fetches from a provider before
// normalization. It is transient and never persisted directly.
type RawUsagePayload struct {
	AccountID  string
	Provider   Provider
	Window     UsageWindow
	Used       float64
	Limit      float64
	Unit       string
	Source     UsageSource
	Confidence UsageConfidence
}

// UsageSnapshot is one immutable, normalized usage measurement. History is
// append-only: every fetch inserts a fresh row.
type UsageSnapshot struct {
	ID             string
	AccountID      string
	Provider       Provider
	WindowType     WindowType
	WindowStart    time.Time
	WindowEnd      time.Time
	UsedValue      float64
	UsedUnit       string
	LimitValue     float64
	LimitUnit      string
	RemainingValue float64
	BatteryPercent float64
	Confidence     UsageConfidence
	Source         UsageSource
	FetchedAt      time.Time
}

// Validate checks the snapshot invariants
func (s *UsageSnapshot) Validate() error {
	if s.UsedValue < 0 || s.LimitValue <= 0 || s.RemainingValue < 0 {
		return ErrInvalidUsageValues
	}
	if s.BatteryPercent < 0 || s.BatteryPercent > 100 {
		return ErrInvalidBatteryPercent
	}
	return nil
}

// BatteryStatus is the derived health row for an account. Inserts are
// append-only; the newest row per account is the current status.
type BatteryStatus struct {
	ID             string
	AccountID      string
	BatteryPercent float64
	IsLow          bool
	Threshold      float64
	Health         Health
	UpdatedAt      time.Time
}

// NewBatteryStatus derives a status from a battery level and threshold.
// The low boundary is inclusive: percent == threshold means low.
func NewBatteryStatus(id, accountID string, batteryPercent, threshold float64, updatedAt time.Time) (*BatteryStatus, error) {
	if batteryPercent < 0 || batteryPercent > 100 || threshold < 0 || threshold > 100 {
		return nil, ErrInvalidBatteryPercent
	}
	isLow := batteryPercent <= threshold
	health := HealthHealthy
	if isLow {
		health = HealthDegraded
	}
	return &BatteryStatus{
		ID:             id,
		AccountID:      accountID,
		BatteryPercent: batteryPercent,
		IsLow:          isLow,
		Threshold:      threshold,
		Health:         health,
		UpdatedAt:      updatedAt,
	}, nil
}

// SyncRun is the append-only audit record of one sync attempt
type SyncRun struct {
	ID           string
	AccountID    string
	StartedAt    time.Time
	EndedAt      time.Time
	Result       SyncResult
	ErrorKind    ErrorKind
	ErrorMessage string
	RetryCount   int
}

// Validate checks the sync run invariants
func (r *SyncRun) Validate() error {
	if r.StartedAt.After(r.EndedAt) {
		return ErrInvalidSyncRunDates
	}
	return nil
}
