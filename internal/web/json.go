package web

import (
	"encoding/json"
	"time"

	"github.com/tlikar/garage-monitor/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Door          string     `json:"door"`
	Confirmed     bool       `json:"confirmed"`
	Since         string     `json:"since,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"transition_counts"`
	Notifications NotifyJSON `json:"notifications"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports broker connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	Opened  int `json:"opened"`
	Closed  int `json:"closed"`
	Partial int `json:"partial"`
	Unknown int `json:"unknown"`
}

// NotifyJSON reports notification delivery counters.
type NotifyJSON struct {
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Topic   string `json:"topic"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CheckIntervalMs int64  `json:"check_interval_ms"`
	DebounceMs      int64  `json:"debounce_ms"`
	NtfyServer      string `json:"ntfy_server"`
	HTTPAddr        string `json:"http_addr"`
}

func formatJSON(snap status.Snapshot) []byte {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	sj := StatusJSON{
		Status: StatusInner{
			Door:          state,
			Confirmed:     snap.Confirmed,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Counts: CountsJSON{
				Opened:  snap.Counts.Opened,
				Closed:  snap.Counts.Closed,
				Partial: snap.Counts.Partial,
				Unknown: snap.Counts.Unknown,
			},
			Notifications: NotifyJSON{
				Sent:    snap.Sent,
				Skipped: snap.Skipped,
				Topic:   snap.Config.NtfyTopic,
			},
			Config: ConfigJSON{
				CheckIntervalMs: snap.Config.CheckIntervalMs,
				DebounceMs:      snap.Config.DebounceMs,
				NtfyServer:      snap.Config.NtfyServer,
				HTTPAddr:        snap.Config.HTTPAddr,
			},
		},
	}

	if !snap.Since.IsZero() {
		sj.Status.Since = snap.Since.UTC().Format(time.RFC3339)
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
