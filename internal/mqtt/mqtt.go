// Package mqtt mirrors committed door transitions and process lifecycle
// events to an MQTT broker. The mirror is optional and best-effort: push
// notifications never depend on it.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/tlikar/garage-monitor/internal/door"
)

// Topic is the MQTT topic for door transition events.
const Topic = "home/garage/door/events"

// TopicSystem is the MQTT topic for process lifecycle events.
const TopicSystem = "home/garage/door/system"

// DoorEvent represents one committed door transition.
type DoorEvent struct {
	Timestamp time.Time
	State     door.State
	Previous  door.State
}

// SystemEvent represents a process lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // "STARTUP", "SHUTDOWN"
	Reason    string // e.g. "SIGTERM" (shutdown only)
	Retained  bool
}

// Publisher publishes events to the broker.
type Publisher interface {
	// PublishDoor sends a door transition. Failure must not crash the
	// process.
	PublishDoor(event DoorEvent) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// DoorPayload is the JSON shape of a door event message.
type DoorPayload struct {
	Door DoorPayloadInner `json:"door"`
}

// DoorPayloadInner contains the door event details.
type DoorPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Previous  string `json:"previous,omitempty"`
}

// FormatDoorPayload creates the JSON payload for a door event.
func FormatDoorPayload(event DoorEvent) ([]byte, error) {
	payload := DoorPayload{
		Door: DoorPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     eventName(event.State),
			State:     string(event.State),
			Previous:  string(event.Previous),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the JSON shape of a lifecycle message.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

func eventName(s door.State) string {
	switch s {
	case door.StateOpen:
		return "OPENED"
	case door.StateClosed:
		return "CLOSED"
	case door.StatePartial:
		return "PARTIAL"
	default:
		return "UNKNOWN"
	}
}
