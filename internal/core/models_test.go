package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{
			name:    "valid account",
			account: Account{Provider: ProviderOpenAI, DisplayName: "Work", AuthType: AuthTypeAPIKey},
		},
		{
			name:    "display name trimmed",
			account: Account{Provider: ProviderClaude, DisplayName: "  Personal  ", AuthType: AuthTypeManual},
		},
		{
			name:    "empty display name",
			account: Account{Provider: ProviderOpenAI, DisplayName: "", AuthType: AuthTypeAPIKey},
			wantErr: ErrInvalidDisplayName,
		},
		{
			name:    "whitespace display name",
			account: Account{Provider: ProviderOpenAI, DisplayName: "   ", AuthType: AuthTypeAPIKey},
			wantErr: ErrInvalidDisplayName,
		},
		{
			name:    "interval too short",
			account: Account{Provider: ProviderOpenAI, DisplayName: "Work", AuthType: AuthTypeAPIKey, SyncIntervalSeconds: 29},
			wantErr: ErrInvalidSyncInterval,
		},
		{
			name:    "interval too long",
			account: Account{Provider: ProviderOpenAI, DisplayName: "Work", AuthType: AuthTypeAPIKey, SyncIntervalSeconds: 3601},
			wantErr: ErrInvalidSyncInterval,
		},
		{
			name:    "interval boundaries",
			account: Account{Provider: ProviderOpenAI, DisplayName: "Work", AuthType: AuthTypeAPIKey, SyncIntervalSeconds: 30},
		},
		{
			name:    "zero interval means default",
			account: Account{Provider: ProviderOpenAI, DisplayName: "Work", AuthType: AuthTypeAPIKey, SyncIntervalSeconds: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccount_Validate_TrimsDisplayName(t *testing.T) {
	account := Account{Provider: ProviderCursor, DisplayName: "  Team  ", AuthType: AuthTypeManual}
	require.NoError(t, account.Validate())
	assert.Equal(t, "Team", account.DisplayName)
}

func TestNewUsageWindow(t *testing.T) {
	now := time.Now()

	window, err := NewUsageWindow(WindowDaily, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, WindowDaily, window.Type)

	_, err = NewUsageWindow(WindowDaily, now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidUsageWindow)

	// start == end is allowed
	_, err = NewUsageWindow(WindowDaily, now, now)
	assert.NoError(t, err)
}

func TestRollingWindow(t *testing.T) {
	end := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	window := RollingWindow(end)

	assert.Equal(t, WindowRolling30Day, window.Type)
	assert.Equal(t, end, window.End)
	assert.Equal(t, end.AddDate(0, 0, -30), window.Start)
}

func TestUsageSnapshot_Validate(t *testing.T) {
	valid := UsageSnapshot{
		UsedValue:      25,
		LimitValue:     100,
		RemainingValue: 75,
		BatteryPercent: 75,
	}
	assert.NoError(t, valid.Validate())

	negativeUsed := valid
	negativeUsed.UsedValue = -1
	assert.ErrorIs(t, negativeUsed.Validate(), ErrInvalidUsageValues)

	zeroLimit := valid
	zeroLimit.LimitValue = 0
	assert.ErrorIs(t, zeroLimit.Validate(), ErrInvalidUsageValues)

	negativeRemaining := valid
	negativeRemaining.RemainingValue = -0.5
	assert.ErrorIs(t, negativeRemaining.Validate(), ErrInvalidUsageValues)

	overPercent := valid
	overPercent.BatteryPercent = 100.01
	assert.ErrorIs(t, overPercent.Validate(), ErrInvalidBatteryPercent)
}

func TestNewBatteryStatus(t *testing.T) {
	now := time.Now()

	status, err := NewBatteryStatus("stat_1", "acc_1", 50, 20, now)
	require.NoError(t, err)
	assert.False(t, status.IsLow)
	assert.Equal(t, HealthHealthy, status.Health)

	low, err := NewBatteryStatus("stat_2", "acc_1", 10, 20, now)
	require.NoError(t, err)
	assert.True(t, low.IsLow)
	assert.Equal(t, HealthDegraded, low.Health)

	_, err = NewBatteryStatus("stat_3", "acc_1", 101, 20, now)
	assert.ErrorIs(t, err, ErrInvalidBatteryPercent)

	_, err = NewBatteryStatus("stat_4", "acc_1", 50, -1, now)
	assert.ErrorIs(t, err, ErrInvalidBatteryPercent)
}

func TestNewBatteryStatus_LowBoundaryInclusive(t *testing.T) {
	now := time.Now()

	// percent == threshold is low
	atThreshold, err := NewBatteryStatus("stat_1", "acc_1", 20, 20, now)
	require.NoError(t, err)
	assert.True(t, atThreshold.IsLow)
	assert.Equal(t, HealthDegraded, atThreshold.Health)

	// percent just above threshold is not
	above, err := NewBatteryStatus("stat_2", "acc_1", 20.0001, 20, now)
	require.NoError(t, err)
	assert.False(t, above.IsLow)
	assert.Equal(t, HealthHealthy, above.Health)
}

func TestSyncRun_Validate(t *testing.T) {
	now := time.Now()

	run := SyncRun{StartedAt: now, EndedAt: now.Add(time.Second), Result: SyncResultSuccess}
	assert.NoError(t, run.Validate())

	reversed := SyncRun{StartedAt: now.Add(time.Second), EndedAt: now, Result: SyncResultFailure}
	assert.ErrorIs(t, reversed.Validate(), ErrInvalidSyncRunDates)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorKindAuth, Classify(NewAuthError("missing credential")))
	assert.Equal(t, ErrorKindRateLimit, Classify(NewRateLimitError("throttled")))
	assert.Equal(t, ErrorKindUnsupportedProvider, Classify(NewUnsupportedProviderError(ProviderCursor)))
	assert.Equal(t, ErrorKindValidation, Classify(NewValidationError(ErrInvalidUsageValues)))
	assert.Equal(t, ErrorKindUnknown, Classify(errors.New("something else")))
	assert.Equal(t, ErrorKindUnknown, Classify(nil))

	// Classification survives wrapping
	wrapped := fmt.Errorf("sync failed: %w", NewNetworkError("connection refused", errors.New("dial tcp")))
	assert.Equal(t, ErrorKindNetwork, Classify(wrapped))
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := NewNetworkError("request failed", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "network")
	assert.Contains(t, err.Error(), "request failed")
}
