package monitor

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tlikar/garage-monitor/internal/door"
	"github.com/tlikar/garage-monitor/internal/mqtt"
	"github.com/tlikar/garage-monitor/internal/notify"
	"github.com/tlikar/garage-monitor/internal/status"
)

// Sampler yields one confirmed door state per call.
type Sampler interface {
	Sample() door.State
}

// Notifier dispatches one notification, reporting whether it was delivered.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) (bool, error)
}

// Loop drives the monitor on a fixed cadence: sample, debounce candidate
// changes, feed the engine, run dwell checks, dispatch notifications.
// Everything happens on the loop goroutine; there is no concurrent access
// to the engine or the throttle ledger.
type Loop struct {
	sampler Sampler
	engine  *Engine
	gateway Notifier
	log     *zap.Logger

	// Publisher mirrors events to MQTT when set.
	Publisher mqtt.Publisher
	// MQTTStatus feeds the broker connection state to the tracker.
	MQTTStatus mqtt.ConnectionStatus
	// Tracker receives a state snapshot every tick when set.
	Tracker *status.Tracker

	debounce time.Duration

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewLoop creates a Loop over the given collaborators.
func NewLoop(sampler Sampler, engine *Engine, gateway Notifier, debounce time.Duration, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		sampler:  sampler,
		engine:   engine,
		gateway:  gateway,
		log:      log,
		debounce: debounce,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// SetClock replaces the time source and the debounce wait. Tests use this
// to run without real delays.
func (l *Loop) SetClock(now func() time.Time, sleep func(time.Duration)) {
	l.now = now
	l.sleep = sleep
}

// Run executes ticks until a signal arrives. It sends the startup notice
// before the first tick and a best-effort stop notice on the way out.
// A panic escaping a tick is converted to an error; the caller still owns
// adapter cleanup, which must not depend on a clean return.
func (l *Loop) Run(tick <-chan time.Time, sig <-chan os.Signal) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor tick panicked: %v", r)
			l.notifyStopOnError(err)
		}
	}()

	l.dispatch(notify.Notification{
		Title:    "Garage monitor started",
		Body:     "Garage door monitoring is now active",
		Priority: notify.PriorityLow,
		Tags:     []string{"white_check_mark"},
	})

	l.publishSystem(mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "STARTUP",
		Retained:  true,
	})

	for {
		select {
		case s := <-sig:
			l.log.Info("received signal, shutting down", zap.String("signal", s.String()))
			name := signalName(s)
			l.dispatch(notify.Notification{
				Title:    "Garage monitor stopped",
				Body:     fmt.Sprintf("Garage door monitoring stopped (%s)", name),
				Priority: notify.PriorityDefault,
				Tags:     []string{"octagonal_sign"},
			})
			l.publishSystem(mqtt.SystemEvent{
				Timestamp: l.now(),
				Event:     "SHUTDOWN",
				Reason:    name,
				Retained:  true,
			})
			return nil

		case <-tick:
			l.runTick()
		}
	}
}

func (l *Loop) runTick() {
	state := l.sampler.Sample()

	current, confirmed := l.engine.State()
	if confirmed && state != current {
		// Candidate change: wait out the debounce window and commit only
		// if the re-sample still disagrees with the old state. A flicker
		// that reverts inside the window is discarded here.
		l.sleep(l.debounce)
		state = l.sampler.Sample()
	}

	now := l.now()
	transition, notes := l.engine.Apply(state, now)

	if !confirmed {
		l.log.Info("initial state established", zap.String("door", door.Describe(state)))
	}

	if transition != nil {
		l.log.Info("door state changed",
			zap.String("from", door.Describe(transition.From)),
			zap.String("to", door.Describe(transition.To)))
		l.publishDoor(mqtt.DoorEvent{
			Timestamp: transition.Time,
			State:     transition.To,
			Previous:  transition.From,
		})
	}

	notes = append(notes, l.engine.CheckDwell(now)...)
	for _, n := range notes {
		l.dispatch(n)
	}

	l.updateTracker()
}

// dispatch sends one notification through the gateway. Delivery failure
// is logged and absorbed; the next real event retries naturally. Only
// clean outcomes reach the tracker, so its skipped counter means throttle
// suppressions, not transport failures.
func (l *Loop) dispatch(n notify.Notification) {
	sent, err := l.gateway.Notify(context.Background(), n)
	if err != nil {
		l.log.Error("notification delivery failed",
			zap.String("title", n.Title), zap.Error(err))
		return
	}
	if l.Tracker != nil {
		l.Tracker.RecordNotification(sent)
	}
}

func (l *Loop) publishDoor(event mqtt.DoorEvent) {
	if l.Publisher == nil {
		return
	}
	if err := l.Publisher.PublishDoor(event); err != nil {
		l.log.Warn("mqtt door publish failed", zap.Error(err))
	}
}

func (l *Loop) publishSystem(event mqtt.SystemEvent) {
	if l.Publisher == nil {
		return
	}
	if err := l.Publisher.PublishSystem(event); err != nil {
		l.log.Warn("mqtt system publish failed", zap.Error(err))
	}
}

func (l *Loop) updateTracker() {
	if l.Tracker == nil {
		return
	}
	state, confirmed := l.engine.State()
	counts := l.engine.CountsSnapshot()
	l.Tracker.Update(state, confirmed, l.engine.LastChange(), status.Counts{
		Opened:  counts.Opened,
		Closed:  counts.Closed,
		Partial: counts.Partial,
		Unknown: counts.Unknown,
	})
	if l.MQTTStatus != nil {
		l.Tracker.SetMQTTConnected(l.MQTTStatus.IsConnected())
	}
}

// notifyStopOnError sends the best-effort final alert for a fatal error.
func (l *Loop) notifyStopOnError(runErr error) {
	l.dispatch(notify.Notification{
		Title:    "Garage monitor error",
		Body:     fmt.Sprintf("Monitoring stopped due to error: %v", runErr),
		Priority: notify.PriorityUrgent,
		Tags:     []string{"x", "warning"},
	})
	l.publishSystem(mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    "ERROR",
		Retained:  true,
	})
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
