// Package config loads the monitor's YAML configuration file.
// Missing fields keep their defaults, so a minimal file only needs the
// notification topic and the sensor source.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Sensor source selection.
const (
	SourceGPIO   = "gpio"
	SourceSerial = "serial"
)

// Duration wraps time.Duration for YAML: either a Go duration string
// ("2s", "10m") or a bare number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil {
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", asString, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds float64
	if err := node.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration value on line %d", node.Line)
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full configuration file.
type Config struct {
	Sensor        SensorConfig  `yaml:"sensor"`
	Notifications NotifyConfig  `yaml:"notifications"`
	Monitoring    MonitorConfig `yaml:"monitoring"`
	Alerts        AlertsConfig  `yaml:"alerts"`
	MQTT          MQTTConfig    `yaml:"mqtt"`
	HTTP          HTTPConfig    `yaml:"http"`
	Logging       LogConfig     `yaml:"logging"`
}

// SensorConfig selects and tunes the signal adapter.
type SensorConfig struct {
	// Source is "gpio" for direct pin access or "serial" for the
	// microcontroller line feed.
	Source string `yaml:"source"`

	// TriggeredValue is the raw value meaning "sensor triggered";
	// depends on switch wiring.
	TriggeredValue int `yaml:"triggered_value"`

	// Samples and SampleGap control the majority-vote read.
	Samples   int      `yaml:"samples"`
	SampleGap Duration `yaml:"sample_gap"`

	GPIO   GPIOConfig   `yaml:"gpio"`
	Serial SerialConfig `yaml:"serial"`
}

// GPIOConfig names the chip and the two sensor lines.
type GPIOConfig struct {
	Chip      string `yaml:"chip"`
	OpenPin   int    `yaml:"open_pin"`
	ClosedPin int    `yaml:"closed_pin"`
}

// SerialConfig tunes the serial feed. An empty port enables
// auto-discovery by USB identifiers.
type SerialConfig struct {
	Port        string   `yaml:"port"`
	BaudRate    int      `yaml:"baud_rate"`
	ReadTimeout Duration `yaml:"read_timeout"`
}

// NotifyConfig points at the push endpoint.
type NotifyConfig struct {
	Server      string   `yaml:"server"`
	Topic       string   `yaml:"topic"`
	MinInterval Duration `yaml:"min_interval"`
	SendTimeout Duration `yaml:"send_timeout"`
}

// MonitorConfig sets the polling cadence.
type MonitorConfig struct {
	CheckInterval Duration `yaml:"check_interval"`
	DebounceTime  Duration `yaml:"debounce_time"`
}

// AlertsConfig holds the alerting policy.
type AlertsConfig struct {
	NightAlerts    bool `yaml:"night_alerts"`
	NightStartHour int  `yaml:"night_start_hour"`
	NightEndHour   int  `yaml:"night_end_hour"`

	LongOpenAlerts    bool     `yaml:"long_open_alerts"`
	LongOpenThreshold Duration `yaml:"long_open_threshold"`

	PartialAlerts    bool     `yaml:"partial_alerts"`
	PartialThreshold Duration `yaml:"partial_threshold"`
}

// MQTTConfig enables the optional broker mirror when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// HTTPConfig enables the optional status page when Addr is set.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls console and rotating-file output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when fields are absent.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Source:         SourceGPIO,
			TriggeredValue: 1,
			Samples:        3,
			SampleGap:      Duration(100 * time.Millisecond),
			GPIO: GPIOConfig{
				Chip:      "gpiochip0",
				OpenPin:   0,
				ClosedPin: 1,
			},
			Serial: SerialConfig{
				BaudRate:    9600,
				ReadTimeout: Duration(2 * time.Second),
			},
		},
		Notifications: NotifyConfig{
			Server:      "https://ntfy.sh",
			MinInterval: Duration(5 * time.Minute),
			SendTimeout: Duration(10 * time.Second),
		},
		Monitoring: MonitorConfig{
			CheckInterval: Duration(2 * time.Second),
			DebounceTime:  Duration(time.Second),
		},
		Alerts: AlertsConfig{
			NightAlerts:       true,
			NightStartHour:    22,
			NightEndHour:      6,
			LongOpenAlerts:    true,
			LongOpenThreshold: Duration(10 * time.Minute),
			PartialAlerts:     true,
			PartialThreshold:  Duration(30 * time.Second),
		},
		MQTT: MQTTConfig{
			ClientID: "garage-monitor",
		},
		Logging: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load reads and validates the configuration file at path, overlaying it
// on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the config file to load: the explicit path when given,
// otherwise the first of ./config.yaml and /etc/garage-monitor/config.yaml
// that exists.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, candidate := range []string{"config.yaml", "/etc/garage-monitor/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no config file found (tried ./config.yaml, /etc/garage-monitor/config.yaml)")
}

// Validate rejects configurations the monitor cannot run with.
func (c *Config) Validate() error {
	switch c.Sensor.Source {
	case SourceGPIO, SourceSerial:
	default:
		return fmt.Errorf("sensor.source must be %q or %q, got %q", SourceGPIO, SourceSerial, c.Sensor.Source)
	}

	if c.Sensor.Samples <= 0 {
		return fmt.Errorf("sensor.samples must be positive, got %d", c.Sensor.Samples)
	}

	if c.Notifications.Topic == "" {
		return fmt.Errorf("notifications.topic is required")
	}
	if c.Notifications.Server == "" {
		return fmt.Errorf("notifications.server is required")
	}

	if c.Monitoring.CheckInterval.Std() <= 0 {
		return fmt.Errorf("monitoring.check_interval must be positive")
	}
	if c.Monitoring.DebounceTime.Std() < 0 {
		return fmt.Errorf("monitoring.debounce_time must not be negative")
	}

	for name, hour := range map[string]int{
		"alerts.night_start_hour": c.Alerts.NightStartHour,
		"alerts.night_end_hour":   c.Alerts.NightEndHour,
	} {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("%s must be 0-23, got %d", name, hour)
		}
	}

	return nil
}
