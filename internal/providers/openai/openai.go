package openai

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
	// DefaultBaseURL is the OpenAI platform API root
	DefaultBaseURL = "https://api.openai.com"

	usageUnit = "requests"
)

// Config contains OpenAI API configuration
type Config struct {
	BaseURL string // API base URL, defaults to DefaultBaseURL
}

// Adapter implements the providers.Adapter interface for OpenAI
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// NewAdapter creates a new OpenAI adapter
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
	return core.ProviderOpenAI
}

// ValidateCredentials checks that a live account carries an API key
func (a *Adapter) ValidateCredentials(account *core.Account, credential string) error {
	return providers.ValidateLiveCredential(account, credential)
}

// usageResponse is the subset of the usage endpoint response we consume
type usageResponse struct {
	TotalUsed float64 `json:"total_used"`
	Limit     float64 `json:"limit"`
	Unit      string  `json:"unit"`
}

// FetchUsage retrieves usage for the window from the OpenAI usage endpoint
func (a *Adapter) FetchUsage(ctx context.Context, account *core.Account, window core.UsageWindow, credential string) (*core.RawUsagePayload, error) {
	if account.AuthType == core.AuthTypeManual {
		return providers.ManualPayload(account, window, usageUnit), nil
	}
	if credential == "" {
		return nil, core.NewAuthError("credential unavailable for OpenAI account")
	}

	url := fmt.Sprintf("%s/v1/organization/usage?start_time=%d&end_time=%d",
		a.config.BaseURL, window.Start.Unix(), window.End.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.NewNetworkError("failed to build usage request", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	if account.WorkspaceIdentifier != "" {
		req.Header.Set("OpenAI-Organization", account.WorkspaceIdentifier)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, core.NewNetworkError("OpenAI usage request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, core.NewAuthError(fmt.Sprintf("OpenAI rejected the credential (status %d)", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, core.NewRateLimitError("OpenAI throttled the usage request")
	case resp.StatusCode != http.StatusOK:
		return nil, core.NewNetworkError(fmt.Sprintf("unexpected status %d from OpenAI usage endpoint", resp.StatusCode), nil)
	}

	var usage usageResponse
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, core.NewParseError("failed to decode OpenAI usage response", err)
	}

	unit := usage.Unit
	if unit == "" {
		unit = usageUnit
	}

	return &core.RawUsagePayload{
		AccountID:  account.ID,
		Provider:   a.Provider(),
		Window:     window,
		Used:       usage.TotalUsed,
		Limit:      usage.Limit,
		Unit:       unit,
		Source:     core.SourceOfficialAPI,
		Confidence: core.ConfidenceExact,
	}, nil
}

// Normalize converts a raw payload into a validated snapshot
func (a *Adapter) Normalize(raw *core.RawUsagePayload) (*core.UsageSnapshot, error) {
	return providers.Normalize(raw)
}

// Ensure Adapter implements the interface
var _ providers.Adapter = (*Adapter)(nil)
