package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestDebouncer returns a debouncer on a controllable clock
func newTestDebouncer(window time.Duration) (*Debouncer, *time.Time) {
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDebouncer(window)
	d.now = func() time.Time { return current }
	return d, &current
}

func TestDebouncer_ShouldSend(t *testing.T) {
	d, clock := newTestDebouncer(900 * time.Second)
	key := Key(AlertLowBattery, "acc_1")

	assert.True(t, d.ShouldSend(key), "first evaluation always sends")

	*clock = clock.Add(1 * time.Second)
	assert.False(t, d.ShouldSend(key), "second evaluation inside the window is suppressed")

	*clock = clock.Add(901 * time.Second)
	assert.True(t, d.ShouldSend(key), "evaluation after the window elapses sends again")
}

func TestDebouncer_WindowMeasuredFromLastSend(t *testing.T) {
	d, clock := newTestDebouncer(900 * time.Second)
	key := Key(AlertSyncFailure, "acc_1")

	assert.True(t, d.ShouldSend(key))

	// Suppressed evaluations do not move the stamp: the window counts from
	// the last send, so an alert that keeps firing is delayed by at most
	// one window, never starved.
	*clock = clock.Add(899 * time.Second)
	assert.False(t, d.ShouldSend(key))

	*clock = clock.Add(899 * time.Second)
	assert.True(t, d.ShouldSend(key), "window from the last send has long elapsed")

	*clock = clock.Add(1 * time.Second)
	assert.False(t, d.ShouldSend(key), "the send above restarted the window")
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d, _ := newTestDebouncer(900 * time.Second)

	assert.True(t, d.ShouldSend(Key(AlertLowBattery, "acc_1")))
	assert.True(t, d.ShouldSend(Key(AlertSyncFailure, "acc_1")), "alert kinds debounce independently")
	assert.True(t, d.ShouldSend(Key(AlertLowBattery, "acc_2")), "accounts debounce independently")
	assert.False(t, d.ShouldSend(Key(AlertLowBattery, "acc_1")))
}

func TestDebouncer_DefaultWindow(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, DefaultDebounceWindow, d.window)
}

func TestDebouncer_Concurrent(t *testing.T) {
	d, _ := newTestDebouncer(900 * time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			d.ShouldSend(Key(AlertLowBattery, fmt.Sprintf("acc_%d", idx)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, d.lastSentAt, 50)
}
