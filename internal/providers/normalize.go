package providers

import (
	"time"

	"gauged/internal/core"
	"gauged/internal/idgen"
)

// Normalize derives a usage snapshot from a raw payload. The formula is
// fixed across all providers: remaining = max(0, limit - used), battery
// percent = remaining/limit*100 clamped to [0,100]. Adapters delegate
// their Normalize implementation here.
func Normalize(raw *core.RawUsagePayload) (*core.UsageSnapshot, error) {
	remaining := raw.Limit - raw.Used
	if remaining < 0 {
		remaining = 0
	}

	percent := 0.0
	if raw.Limit > 0 {
		percent = remaining / raw.Limit * 100
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	snapshot := &core.UsageSnapshot{
		ID:             idgen.NewSnapshot(),
		AccountID:      raw.AccountID,
		Provider:       raw.Provider,
		WindowType:     raw.Window.Type,
		WindowStart:    raw.Window.Start,
		WindowEnd:      raw.Window.End,
		UsedValue:      raw.Used,
		UsedUnit:       raw.Unit,
		LimitValue:     raw.Limit,
		LimitUnit:      raw.Unit,
		RemainingValue: remaining,
		BatteryPercent: percent,
		Confidence:     raw.Confidence,
		Source:         raw.Source,
		FetchedAt:      time.Now(),
	}

	if err := snapshot.Validate(); err != nil {
		return nil, core.NewValidationError(err)
	}

	return snapshot, nil
}

// ManualPayload returns the fixed placeholder payload for manual-auth
// accounts: a full battery with no live data behind it.
func ManualPayload(account *core.Account, window core.UsageWindow, unit string) *core.RawUsagePayload {
	return &core.RawUsagePayload{
		AccountID:  account.ID,
		Provider:   account.Provider,
		Window:     window,
		Used:       0,
		Limit:      100,
		Unit:       unit,
		Source:     core.SourceManual,
		Confidence: core.ConfidenceManual,
	}
}

// ValidateLiveCredential implements the shared ValidateCredentials policy:
// manual accounts pass unconditionally, live accounts need a non-empty
// credential.
func ValidateLiveCredential(account *core.Account, credential string) error {
	if account.AuthType == core.AuthTypeManual {
		return nil
	}
	if credential == "" {
		return core.NewAuthError("credential missing for " + string(account.Provider) + " account")
	}
	return nil
}
