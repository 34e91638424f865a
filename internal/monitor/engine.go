// Package monitor contains the transition and dwell state machine and the
// polling loop that drives it. The engine is pure: time is always passed
// in, and alerting decisions come back as notification values for the
// caller to dispatch.
package monitor

import (
	"fmt"
	"time"

	"github.com/tlikar/garage-monitor/internal/door"
	"github.com/tlikar/garage-monitor/internal/notify"
)

// Policy holds the alerting rules.
type Policy struct {
	// NightAlerts escalates "opened" notifications inside the night
	// window. The window wraps midnight when NightStart > NightEnd.
	NightAlerts bool
	NightStart  int
	NightEnd    int

	// LongOpenAlerts fires a dwell alert after the door has been fully
	// open for LongOpenThreshold, re-arming each time it fires.
	LongOpenAlerts    bool
	LongOpenThreshold time.Duration

	// PartialAlerts is the symmetric rule for the partial position.
	PartialAlerts    bool
	PartialThreshold time.Duration
}

// Transition records one committed state change.
type Transition struct {
	From door.State
	To   door.State
	Time time.Time
}

// Counts tracks committed transitions by target state since startup.
type Counts struct {
	Opened  int
	Closed  int
	Partial int
	Unknown int
}

// Engine owns the monitor context: the current confirmed state and the
// timestamps the dwell rules run on. Single-threaded by design; only the
// loop touches it.
type Engine struct {
	policy Policy

	state       door.State
	initialized bool

	// openedAt tracks when the door last reached fully open; it survives
	// a sag into partial so the eventual "closed" notice still reports
	// the full open duration. partialSince tracks the partial dwell.
	openedAt     time.Time
	partialSince time.Time

	lastChange time.Time
	counts     Counts
}

// NewEngine creates an engine with the given policy. No state is assumed
// until the first sample is applied.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Apply feeds one confirmed sample to the state machine. The first sample
// initializes the state silently. A sample equal to the current state is
// a no-op. Anything else commits a transition and returns it together
// with the notifications it warrants. The caller is responsible for the
// debounce re-sample before calling Apply with a changed state.
func (e *Engine) Apply(s door.State, now time.Time) (*Transition, []notify.Notification) {
	if !e.initialized {
		// First confirmed reading establishes the state with no alert
		// and no dwell timestamps armed.
		e.state = s
		e.initialized = true
		e.lastChange = now
		return nil, nil
	}

	if s == e.state {
		return nil, nil
	}

	tr := &Transition{From: e.state, To: s, Time: now}
	e.state = s
	e.lastChange = now

	var notes []notify.Notification

	switch s {
	case door.StateOpen:
		e.counts.Opened++
		e.openedAt = now
		e.partialSince = time.Time{}
		notes = append(notes, e.openedNotification(now))

	case door.StateClosed:
		e.counts.Closed++
		notes = append(notes, e.closedNotification(now))
		e.openedAt = time.Time{}
		e.partialSince = time.Time{}

	case door.StatePartial:
		e.counts.Partial++
		if e.partialSince.IsZero() {
			e.partialSince = now
		}
		notes = append(notes, notify.Notification{
			Title:    "Garage door partially open",
			Body:     fmt.Sprintf("Garage door is in a partially open position at %s", now.Format("15:04")),
			Priority: notify.PriorityDefault,
			Tags:     []string{"pause_button", "door"},
		})

	case door.StateUnknown:
		// Sensor conflict. Timestamps are left untouched so a recovery
		// back to the prior state keeps its dwell accounting.
		e.counts.Unknown++
		notes = append(notes, notify.Notification{
			Title:    "Garage door state unknown",
			Body:     "Both sensors are active - possible wiring issue",
			Priority: notify.PriorityHigh,
			Tags:     []string{"question", "warning"},
		})
	}

	return tr, notes
}

// CheckDwell evaluates the duration rules for the current state. When a
// rule fires, its reference timestamp resets to now so the alert re-fires
// after another full threshold rather than once per tick.
func (e *Engine) CheckDwell(now time.Time) []notify.Notification {
	var notes []notify.Notification

	if e.state == door.StateOpen && e.policy.LongOpenAlerts && !e.openedAt.IsZero() {
		if elapsed := now.Sub(e.openedAt); elapsed >= e.policy.LongOpenThreshold {
			minutes := int(elapsed.Minutes())
			notes = append(notes, notify.Notification{
				Title:    "Garage door open too long",
				Body:     fmt.Sprintf("Garage door has been fully open for %d minutes!", minutes),
				Priority: notify.PriorityHigh,
				Tags:     []string{"warning", "clock"},
			})
			e.openedAt = now
		}
	}

	if e.state == door.StatePartial && e.policy.PartialAlerts && !e.partialSince.IsZero() {
		if elapsed := now.Sub(e.partialSince); elapsed >= e.policy.PartialThreshold {
			seconds := int(elapsed.Seconds())
			notes = append(notes, notify.Notification{
				Title:    "Garage door stuck",
				Body:     fmt.Sprintf("Garage door has been partially open for %d seconds!", seconds),
				Priority: notify.PriorityHigh,
				Tags:     []string{"warning", "door"},
			})
			e.partialSince = now
		}
	}

	return notes
}

// State returns the current confirmed state and whether one exists yet.
func (e *Engine) State() (door.State, bool) {
	return e.state, e.initialized
}

// LastChange returns when the current state was entered.
func (e *Engine) LastChange() time.Time {
	return e.lastChange
}

// CountsSnapshot returns the transition counters.
func (e *Engine) CountsSnapshot() Counts {
	return e.counts
}

func (e *Engine) openedNotification(now time.Time) notify.Notification {
	timeStr := now.Format("15:04")

	if e.policy.NightAlerts && inNightWindow(now.Hour(), e.policy.NightStart, e.policy.NightEnd) {
		return notify.Notification{
			Title:    "Suspicious garage activity",
			Body:     fmt.Sprintf("Garage door was fully opened at %s (unusual hour)", timeStr),
			Priority: notify.PriorityUrgent,
			Tags:     []string{"rotating_light", "warning"},
		}
	}

	return notify.Notification{
		Title:    "Garage door opened",
		Body:     fmt.Sprintf("Garage door reached the fully open position at %s", timeStr),
		Priority: notify.PriorityDefault,
		Tags:     []string{"door", "unlock"},
	}
}

func (e *Engine) closedNotification(now time.Time) notify.Notification {
	body := fmt.Sprintf("Garage door reached the fully closed position at %s", now.Format("15:04"))
	if !e.openedAt.IsZero() {
		body += fmt.Sprintf(" (was open %s)", formatOpenDuration(now.Sub(e.openedAt)))
	}
	return notify.Notification{
		Title:    "Garage door closed",
		Body:     body,
		Priority: notify.PriorityLow,
		Tags:     []string{"door", "lock"},
	}
}

// formatOpenDuration renders a duration as minutes and seconds, dropping
// the minutes part under one minute.
func formatOpenDuration(d time.Duration) string {
	total := int(d.Seconds())
	minutes := total / 60
	seconds := total % 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// inNightWindow tests an hour against a possibly midnight-wrapping range.
func inNightWindow(hour, start, end int) bool {
	if start > end {
		return hour >= start || hour < end
	}
	return start <= hour && hour < end
}
