// Package secrets resolves opaque credential references to secret strings.
// The engine never sees where a credential lives, only its reference.
package secrets

import (
	"context"
	"errors"

	"gauged/internal/core"
)

// ErrSecretNotFound is returned when no secret exists for a reference
var ErrSecretNotFound = errors.New("secret not found")

// Store holds per-account credentials keyed by an opaque reference
type Store interface {
	Get(ctx context.Context, ref string) (string, error)
	Put(ctx context.Context, ref string, value string) error
	Delete(ctx context.Context, ref string) error
}

// CredentialRef builds the canonical credential reference for an account
func CredentialRef(accountID string, authType core.AuthType) string {
	return accountID + "." + string(authType)
}
