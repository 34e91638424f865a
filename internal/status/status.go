// Package status provides a thread-safe status tracker for the monitor
// daemon, read by the HTTP status handlers.
package status

import (
	"sync"
	"time"

	"github.com/tlikar/garage-monitor/internal/door"
)

// Counts tracks committed door transitions by target state.
type Counts struct {
	Opened  int
	Closed  int
	Partial int
	Unknown int
}

// Config contains daemon configuration for display.
type Config struct {
	CheckIntervalMs int64
	DebounceMs      int64
	NtfyServer      string
	NtfyTopic       string
	Broker          string
	HTTPAddr        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         door.State
	Confirmed     bool // false until the first successful sample
	Since         time.Time
	Counts        Counts
	Sent          int // notifications delivered
	Skipped       int // notifications suppressed by throttling
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets door state, its entry time, and the transition counters.
// Called from the loop on every tick.
func (t *Tracker) Update(state door.State, confirmed bool, since time.Time, counts Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Confirmed = confirmed
	t.snap.Since = since
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordNotification bumps the delivered or skipped counter.
func (t *Tracker) RecordNotification(sent bool) {
	t.mu.Lock()
	if sent {
		t.snap.Sent++
	} else {
		t.snap.Skipped++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the broker connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
