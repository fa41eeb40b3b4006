package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauged/internal/core"
)

func rawPayload(used, limit float64) *core.RawUsagePayload {
	now := time.Now()
	return &core.RawUsagePayload{
		AccountID:  "acc_1",
		Provider:   core.ProviderOpenAI,
		Window:     core.RollingWindow(now),
		Used:       used,
		Limit:      limit,
		Unit:       "requests",
		Source:     core.SourceOfficialAPI,
		Confidence: core.ConfidenceExact,
	}
}

func TestNormalize(t *testing.T) {
	snapshot, err := Normalize(rawPayload(25, 100))
	require.NoError(t, err)

	assert.InDelta(t, 75.0, snapshot.RemainingValue, 0.001)
	assert.InDelta(t, 75.0, snapshot.BatteryPercent, 0.001)
	assert.Equal(t, "requests", snapshot.UsedUnit)
	assert.Equal(t, "requests", snapshot.LimitUnit)
	assert.NotEmpty(t, snapshot.ID)
	assert.False(t, snapshot.FetchedAt.IsZero())
}

func TestNormalize_UnusedIsFullBattery(t *testing.T) {
	snapshot, err := Normalize(rawPayload(0, 100))
	require.NoError(t, err)

	assert.InDelta(t, 100.0, snapshot.BatteryPercent, 0.001)
	assert.InDelta(t, 100.0, snapshot.RemainingValue, 0.001)
}

func TestNormalize_OverconsumptionClampsToZero(t *testing.T) {
	snapshot, err := Normalize(rawPayload(150, 100))
	require.NoError(t, err)

	assert.Zero(t, snapshot.RemainingValue)
	assert.Zero(t, snapshot.BatteryPercent)
}

func TestNormalize_InvalidValues(t *testing.T) {
	_, err := Normalize(rawPayload(10, -5))
	require.Error(t, err)
	assert.Equal(t, core.ErrorKindValidation, core.Classify(err))

	_, err = Normalize(rawPayload(-1, 100))
	require.Error(t, err)
	assert.Equal(t, core.ErrorKindValidation, core.Classify(err))
}

func TestManualPayload(t *testing.T) {
	account := &core.Account{ID: "acc_1", Provider: core.ProviderClaude, AuthType: core.AuthTypeManual}
	window := core.RollingWindow(time.Now())

	payload := ManualPayload(account, window, "messages")

	assert.Zero(t, payload.Used)
	assert.Equal(t, 100.0, payload.Limit)
	assert.Equal(t, "messages", payload.Unit)
	assert.Equal(t, core.SourceManual, payload.Source)
	assert.Equal(t, core.ConfidenceManual, payload.Confidence)
}

func TestValidateLiveCredential(t *testing.T) {
	manual := &core.Account{Provider: core.ProviderOpenAI, AuthType: core.AuthTypeManual}
	assert.NoError(t, ValidateLiveCredential(manual, ""))

	live := &core.Account{Provider: core.ProviderOpenAI, AuthType: core.AuthTypeAPIKey}
	err := ValidateLiveCredential(live, "")
	require.Error(t, err)
	assert.Equal(t, core.ErrorKindAuth, core.Classify(err))

	assert.NoError(t, ValidateLiveCredential(live, "sk-test"))
}
