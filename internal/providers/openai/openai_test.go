package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauged/internal/core"
)

func liveAccount() *core.Account {
	return &core.Account{
		ID:          "acc_openai",
		Provider:    core.ProviderOpenAI,
		DisplayName: "Work",
		AuthType:    core.AuthTypeAPIKey,
	}
}

func TestAdapter_Provider(t *testing.T) {
	adapter := NewAdapter(Config{})
	assert.Equal(t, core.ProviderOpenAI, adapter.Provider())
}

func TestAdapter_ValidateCredentials(t *testing.T) {
	adapter := NewAdapter(Config{})

	manual := liveAccount()
	manual.AuthType = core.AuthTypeManual
	assert.NoError(t, adapter.ValidateCredentials(manual, ""))

	err := adapter.ValidateCredentials(liveAccount(), "")
	require.Error(t, err)
	assert.Equal(t, core.ErrorKindAuth, core.Classify(err))

	assert.NoError(t, adapter.ValidateCredentials(liveAccount(), "sk-test"))
}

func TestAdapter_FetchUsage(t *testing.T) {
	var gotAuth, gotOrg string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotOrg = r.Header.Get("OpenAI-Organization")
		assert.Equal(t, "/v1/organization/usage", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("start_time"))
		assert.NotEmpty(t, r.URL.Query().Get("end_time"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"total_used": 40, "limit": 200, "unit": "requests"}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{BaseURL: server.URL})
	account := liveAccount()
	account.WorkspaceIdentifier = "org-123"
	window := core.RollingWindow(time.Now())

	raw, err := adapter.FetchUsage(context.Background(), account, window, "sk-test")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "org-123", gotOrg)
	assert.Equal(t, 40.0, raw.Used)
	assert.Equal(t, 200.0, raw.Limit)
	assert.Equal(t, "requests", raw.Unit)
	assert.Equal(t, core.SourceOfficialAPI, raw.Source)
	assert.Equal(t, core.ConfidenceExact, raw.Confidence)
}

func TestAdapter_FetchUsage_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind core.ErrorKind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: core.ErrorKindAuth},
		{name: "forbidden", status: http.StatusForbidden, wantKind: core.ErrorKindAuth},
		{name: "throttled", status: http.StatusTooManyRequests, wantKind: core.ErrorKindRateLimit},
		{name: "server error", status: http.StatusInternalServerError, wantKind: core.ErrorKindNetwork},
		{name: "malformed body", status: http.StatusOK, body: `{"total_used": `, wantKind: core.ErrorKindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			adapter := NewAdapter(Config{BaseURL: server.URL})
			_, err := adapter.FetchUsage(context.Background(), liveAccount(), core.RollingWindow(time.Now()), "sk-test")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, core.Classify(err))
		})
	}
}

func TestAdapter_FetchUsage_TransportFailure(t *testing.T) {
	// Server closed before the request is made
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	adapter := NewAdapter(Config{BaseURL: server.URL})
	_, err := adapter.FetchUsage(context.Background(), liveAccount(), core.RollingWindow(time.Now()), "sk-test")
	require.Error(t, err)
	assert.Equal(t, core.ErrorKindNetwork, core.Classify(err))
}

func TestAdapter_FetchUsage_ManualNeverTouchesNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	adapter := NewAdapter(Config{BaseURL: server.URL})
	account := liveAccount()
	account.AuthType = core.AuthTypeManual

	raw, err := adapter.FetchUsage(context.Background(), account, core.RollingWindow(time.Now()), "")
	require.NoError(t, err)

	assert.False(t, called, "manual accounts must not perform network I/O")
	assert.Zero(t, raw.Used)
	assert.Equal(t, 100.0, raw.Limit)
	assert.Equal(t, core.SourceManual, raw.Source)
}

func TestAdapter_FetchUsage_MissingCredential(t *testing.T) {
	adapter := NewAdapter(Config{})
	_, err := adapter.FetchUsage(context.Background(), liveAccount(), core.RollingWindow(time.Now()), "")
	require.Error(t, err)
	assert.Equal(t, core.ErrorKindAuth, core.Classify(err))
}

func TestAdapter_Normalize(t *testing.T) {
	adapter := NewAdapter(Config{})
	raw := &core.RawUsagePayload{
		AccountID:  "acc_openai",
		Provider:   core.ProviderOpenAI,
		Window:     core.RollingWindow(time.Now()),
		Used:       40,
		Limit:      200,
		Unit:       "requests",
		Source:     core.SourceOfficialAPI,
		Confidence: core.ConfidenceExact,
	}

	snapshot, err := adapter.Normalize(raw)
	require.NoError(t, err)
	assert.InDelta(t, 160.0, snapshot.RemainingValue, 0.001)
	assert.InDelta(t, 80.0, snapshot.BatteryPercent, 0.001)
}
