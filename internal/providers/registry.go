package providers

import (
	"fmt"

	"gauged/internal/core"
)

// ErrAdapterNotFound is returned by Lookup when the provider has no
// registered adapter.
var ErrAdapterNotFound = fmt.Errorf("adapter not found")

// Registry is the immutable provider-to-adapter dispatch table. It is built
// once at startup; adding a provider means registering a new adapter here,
// the sync engine never changes.
type Registry struct {
	adapters map[core.Provider]Adapter
}

// NewRegistry builds a registry from a list of adapters. Registering two
// adapters for the same provider is not an error: the last one wins. This
// override-by-last-write policy lets a caller replace a stock adapter by
// appending its own.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[core.Provider]Adapter, len(adapters))
	for _, adapter := range adapters {
		m[adapter.Provider()] = adapter
	}
	return &Registry{adapters: m}
}

// Lookup returns the adapter for a provider. A missing adapter is not a
// construction-time error; it only surfaces here, when an account of that
// provider is synced.
func (r *Registry) Lookup(provider core.Provider) (Adapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, provider)
	}
	return adapter, nil
}

// Providers returns all registered provider tags
func (r *Registry) Providers() []core.Provider {
	names := make([]core.Provider, 0, len(r.adapters))
	for provider := range r.adapters {
		names = append(names, provider)
	}
	return names
}
