package engine

// Settings defaults and bounds
const (
	DefaultIntervalSeconds     = 120
	MinIntervalSeconds         = 30
	DefaultLowBatteryThreshold = 20.0
)

// SyncSettings controls the scheduling loop, the low-battery threshold and
// debug logging. A replacement set takes effect for the next cycle, never
// for one already in flight.
type SyncSettings struct {
	DefaultIntervalSeconds int     `json:"default_interval_seconds"`
	LowBatteryThreshold    float64 `json:"low_battery_threshold"`
	DebugLoggingEnabled    bool    `json:"debug_logging_enabled"`
}

// NewSyncSettings builds settings, clamping out-of-range values instead of
// rejecting them.
func NewSyncSettings(intervalSeconds int, threshold float64, debugLogging bool) SyncSettings {
	if intervalSeconds < MinIntervalSeconds {
		intervalSeconds = MinIntervalSeconds
	}
	if threshold < 0 {
		threshold = 0
	} else if threshold > 100 {
		threshold = 100
	}
	return SyncSettings{
		DefaultIntervalSeconds: intervalSeconds,
		LowBatteryThreshold:    threshold,
		DebugLoggingEnabled:    debugLogging,
	}
}

// DefaultSyncSettings returns the default settings
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		DefaultIntervalSeconds: DefaultIntervalSeconds,
		LowBatteryThreshold:    DefaultLowBatteryThreshold,
	}
}
