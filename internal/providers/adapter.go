package providers

import (
	"context"

	"gauged/internal/core"
)

// Adapter defines the interface that all provider adapters must implement.
// Adapters are stateless: the only side effect allowed is the network call
// inside FetchUsage.
type Adapter interface {
	// Provider returns the provider this adapter serves
	Provider() core.Provider

	// ValidateCredentials checks that the account has a usable credential.
	// Manual-auth accounts always pass; live accounts fail with an auth
	// error when the credential is missing or empty. No network access.
	ValidateCredentials(account *core.Account, credential string) error

	// FetchUsage retrieves the raw usage figures for the window. Manual-auth
	// accounts short-circuit to a fixed placeholder payload without any
	// network I/O so they still produce a stable history.
	FetchUsage(ctx context.Context, account *core.Account, window core.UsageWindow, credential string) (*core.RawUsagePayload, error)

	// Normalize converts a raw payload into a validated usage snapshot
	Normalize(raw *core.RawUsagePayload) (*core.UsageSnapshot, error)
}
