package notify

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the minimum interval between two alerts sharing
// the same key.
const DefaultDebounceWindow = 900 * time.Second

// AlertKind namespaces debounce keys so different alerts for the same
// account debounce independently.
type AlertKind string

const (
	AlertLowBattery  AlertKind = "low-battery"
	AlertSyncFailure AlertKind = "sync-failure"
)

// Key builds the debounce key for an account and alert kind
func Key(kind AlertKind, accountID string) string {
	return string(kind) + "-" + accountID
}

// Debouncer suppresses repeat alerts for the same key within a time
// window. State lives in memory only; a restart clears it.
type Debouncer struct {
	mu         sync.Mutex
	lastSentAt map[string]time.Time
	window     time.Duration
	now        func() time.Time
}

// NewDebouncer creates a debouncer. A zero window means the default.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		lastSentAt: make(map[string]time.Time),
		window:     window,
		now:        time.Now,
	}
}

// ShouldSend reports whether an alert for the key may go out now. A call
// that returns true stamps the key immediately, whether or not the caller's
// delivery then succeeds, so a flaky alert transport is never hammered with
// retries. Suppressed calls leave the stamp untouched: the window is
// measured from the last send, not the last attempt.
func (d *Debouncer) ShouldSend(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.lastSentAt[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.lastSentAt[key] = now
	return true
}
