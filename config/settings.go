package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gauged/internal/engine"
)

// SettingsStore persists sync settings as a JSON file next to the database,
// so operator changes made through the API survive a restart.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

// NewSettingsStore creates a settings store backed by the given file
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load reads the persisted settings. A missing file yields the defaults;
// out-of-range values are clamped.
func (s *SettingsStore) Load() (engine.SyncSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return engine.DefaultSyncSettings(), nil
		}
		return engine.SyncSettings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw engine.SyncSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return engine.SyncSettings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if raw.DefaultIntervalSeconds == 0 {
		raw.DefaultIntervalSeconds = engine.DefaultIntervalSeconds
	}
	return engine.NewSyncSettings(raw.DefaultIntervalSeconds, raw.LowBatteryThreshold, raw.DebugLoggingEnabled), nil
}

// Save writes the settings to disk
func (s *SettingsStore) Save(settings engine.SyncSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
