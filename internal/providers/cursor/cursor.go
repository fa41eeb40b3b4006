package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gauged/internal/core"
	"gauged/internal/providers"
)

const (
	// DefaultBaseURL is the Cursor dashboard API root
	DefaultBaseURL = "https://www.cursor.com"

	usageUnit = "requests"
)

// Config contains Cursor API configuration
type Config struct {
	BaseURL string // API base URL, defaults to DefaultBaseURL
}

// Adapter implements the providers.Adapter interface for Cursor. Cursor
// only exposes usage behind a dashboard session, so figures are estimated.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// NewAdapter creates a new Cursor adapter
func NewAdapter(config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Provider returns the provider tag
func (a *Adapter) Provider() core.Provider {
	return core.ProviderCursor
}

// ValidateCredentials checks that a live account carries a session token
func (a *Adapter) ValidateCredentials(account *core.Account, credential string) error {
	return providers.ValidateLiveCredential(account, credential)
}

type usageResponse struct {
	NumRequests float64 `json:"numRequests"`
	MaxRequests float64 `json:"maxRequestUsage"`
}

// FetchUsage retrieves usage for the account from the dashboard API
func (a *Adapter) FetchUsage(ctx context.Context, account *core.Account, window core.UsageWindow, credential string) (*core.RawUsagePayload, error) {
	if account.AuthType == core.AuthTypeManual {
		return providers.ManualPayload(account, window, usageUnit), nil
	}
	if credential == "" {
		return nil, core.NewAuthError("credential unavailable for Cursor account")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/api/usage", nil)
	if err != nil {
		return nil, core.NewNetworkError("failed to build usage request", err)
	}
	req.AddCookie(&http.Cookie{Name: "WorkosCursorSessionToken", Value: credential})

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, core.NewNetworkError("Cursor usage request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, core.NewAuthError(fmt.Sprintf("Cursor rejected the session (status %d)", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, core.NewRateLimitError("Cursor throttled the usage request")
	case resp.StatusCode != http.StatusOK:
		return nil, core.NewNetworkError(fmt.Sprintf("unexpected status %d from Cursor usage endpoint", resp.StatusCode), nil)
	}

	var usage usageResponse
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, core.NewParseError("failed to decode Cursor usage response", err)
	}

	return &core.RawUsagePayload{
		AccountID:  account.ID,
		Provider:   a.Provider(),
		Window:     window,
		Used:       usage.NumRequests,
		Limit:      usage.MaxRequests,
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
