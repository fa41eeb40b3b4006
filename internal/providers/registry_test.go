package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauged/internal/core"
)

// mockAdapter is a simple mock implementation of Adapter
type mockAdapter struct {
	provider core.Provider
	label    string
}

func (m *mockAdapter) Provider() core.Provider {
	return m.provider
}

func (m *mockAdapter) ValidateCredentials(account *core.Account, credential string) error {
	return nil
}

func (m *mockAdapter) FetchUsage(ctx context.Context, account *core.Account, window core.UsageWindow, credential string) (*core.RawUsagePayload, error) {
	return nil, nil
}

func (m *mockAdapter) Normalize(raw *core.RawUsagePayload) (*core.UsageSnapshot, error) {
	return Normalize(raw)
}

func TestRegistry_Lookup(t *testing.T) {
	openai := &mockAdapter{provider: core.ProviderOpenAI}
	claude := &mockAdapter{provider: core.ProviderClaude}
	registry := NewRegistry(openai, claude)

	adapter, err := registry.Lookup(core.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, openai, adapter)

	adapter, err = registry.Lookup(core.ProviderClaude)
	require.NoError(t, err)
	assert.Equal(t, claude, adapter)

	_, err = registry.Lookup(core.ProviderCursor)
	assert.ErrorIs(t, err, ErrAdapterNotFound)
}

func TestRegistry_DuplicateLastWriteWins(t *testing.T) {
	first := &mockAdapter{provider: core.ProviderOpenAI, label: "first"}
	second := &mockAdapter{provider: core.ProviderOpenAI, label: "second"}
	registry := NewRegistry(first, second)

	adapter, err := registry.Lookup(core.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "second", adapter.(*mockAdapter).label)
	assert.Len(t, registry.Providers(), 1)
}

func TestRegistry_Empty(t *testing.T) {
	registry := NewRegistry()

	assert.Empty(t, registry.Providers())
	_, err := registry.Lookup(core.ProviderOpenAI)
	assert.ErrorIs(t, err, ErrAdapterNotFound)
}
