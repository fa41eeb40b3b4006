package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gauged/internal/core"
	"gauged/internal/providers"
	"gauged/internal/providers/claude"
	"gauged/internal/providers/cursor"
	"gauged/internal/providers/openai"
)

// adapter-probe exercises one provider adapter end to end without touching
// the database: validate the credential, fetch usage for the rolling window
// and print the normalized snapshot.
func main() {
	provider := flag.String("provider", "", "Provider to probe: openai, claude, cursor")
	authType := flag.String("auth-type", "api_key", "Auth type: api_key, session, manual")
	credential := flag.String("credential", "", "Credential value (omit for manual accounts)")
	baseURL := flag.String("base-url", "", "Override the provider base URL")
	workspace := flag.String("workspace", "", "Workspace or organization identifier")
	flag.Parse()

	if *provider == "" {
		log.Fatal("Error: -provider is required (openai, claude or cursor)")
	}

	registry := providers.NewRegistry(
		openai.NewAdapter(openai.Config{BaseURL: *baseURL}),
		claude.NewAdapter(),
		cursor.NewAdapter(cursor.Config{BaseURL: *baseURL}),
	)

	adapter, err := registry.Lookup(core.Provider(*provider))
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	account := &core.Account{
		ID:                  "probe",
		Provider:            core.Provider(*provider),
		DisplayName:         "adapter probe",
		WorkspaceIdentifier: *workspace,
		AuthType:            core.AuthType(*authType),
	}

	if err := adapter.ValidateCredentials(account, *credential); err != nil {
		log.Fatalf("Credential validation failed: %v", err)
	}
	fmt.Println("✓ Credentials accepted")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	window := core.RollingWindow(time.Now())
	raw, err := adapter.FetchUsage(ctx, account, window, *credential)
	if err != nil {
		log.Fatalf("Fetch failed (%s): %v", core.Classify(err), err)
	}
	fmt.Printf("✓ Fetched usage: used=%.2f limit=%.2f unit=%s source=%s\n",
		raw.Used, raw.Limit, raw.Unit, raw.Source)

	snapshot, err := adapter.Normalize(raw)
	if err != nil {
		log.Fatalf("Normalize failed: %v", err)
	}

	fmt.Printf("✓ Snapshot: battery=%.1f%% remaining=%.2f confidence=%s window=%s..%s\n",
		snapshot.BatteryPercent,
		snapshot.RemainingValue,
		snapshot.Confidence,
		snapshot.WindowStart.Format(time.RFC3339),
		snapshot.WindowEnd.Format(time.RFC3339),
	)
}
