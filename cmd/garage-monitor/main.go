// Command garage-monitor watches a pair of door position sensors and
// pushes notifications when the door moves or lingers open.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tlikar/garage-monitor/internal/config"
	"github.com/tlikar/garage-monitor/internal/logging"
	"github.com/tlikar/garage-monitor/internal/monitor"
	"github.com/tlikar/garage-monitor/internal/mqtt"
	"github.com/tlikar/garage-monitor/internal/notify"
	"github.com/tlikar/garage-monitor/internal/sensor"
	"github.com/tlikar/garage-monitor/internal/status"
	"github.com/tlikar/garage-monitor/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	path, err := config.Discover(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("monitor stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	reader, err := buildReader(cfg, log)
	if err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}
	defer reader.Close()

	sampler := sensor.NewSampler(reader, cfg.Sensor.Samples, cfg.Sensor.SampleGap.Std())

	sender := notify.NewNtfySender(
		cfg.Notifications.Server,
		cfg.Notifications.Topic,
		cfg.Notifications.SendTimeout.Std(),
	)
	gateway := notify.NewGateway(sender, cfg.Notifications.MinInterval.Std(), log)

	engine := monitor.NewEngine(monitor.Policy{
		NightAlerts:       cfg.Alerts.NightAlerts,
		NightStart:        cfg.Alerts.NightStartHour,
		NightEnd:          cfg.Alerts.NightEndHour,
		LongOpenAlerts:    cfg.Alerts.LongOpenAlerts,
		LongOpenThreshold: cfg.Alerts.LongOpenThreshold.Std(),
		PartialAlerts:     cfg.Alerts.PartialAlerts,
		PartialThreshold:  cfg.Alerts.PartialThreshold.Std(),
	})

	loop := monitor.NewLoop(sampler, engine, gateway, cfg.Monitoring.DebounceTime.Std(), log)

	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, log)
		if err != nil {
			log.Warn("mqtt disabled", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		} else {
			defer pub.Close()
			loop.Publisher = pub
			loop.MQTTStatus = pub
		}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		CheckIntervalMs: cfg.Monitoring.CheckInterval.Std().Milliseconds(),
		DebounceMs:      cfg.Monitoring.DebounceTime.Std().Milliseconds(),
		NtfyServer:      cfg.Notifications.Server,
		NtfyTopic:       cfg.Notifications.Topic,
		Broker:          cfg.MQTT.Broker,
		HTTPAddr:        cfg.HTTP.Addr,
	})
	loop.Tracker = tracker

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Warn("status server stopped", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	log.Info("garage monitor starting",
		zap.String("sensor", cfg.Sensor.Source),
		zap.Duration("check_interval", cfg.Monitoring.CheckInterval.Std()),
		zap.Duration("debounce", cfg.Monitoring.DebounceTime.Std()),
		zap.String("ntfy_topic", cfg.Notifications.Topic),
		zap.Bool("night_alerts", cfg.Alerts.NightAlerts),
		zap.Bool("long_open_alerts", cfg.Alerts.LongOpenAlerts),
		zap.String("mqtt_broker", cfg.MQTT.Broker),
		zap.String("http_addr", cfg.HTTP.Addr),
	)

	ticker := time.NewTicker(cfg.Monitoring.CheckInterval.Std())
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	return loop.Run(ticker.C, sig)
}

func buildReader(cfg *config.Config, log *zap.Logger) (sensor.Reader, error) {
	switch cfg.Sensor.Source {
	case config.SourceSerial:
		if cfg.Sensor.Serial.Port == "" {
			log.Info("no serial port configured, scanning for a known device")
		}
		return sensor.NewSerialReader(sensor.SerialConfig{
			Port:        cfg.Sensor.Serial.Port,
			BaudRate:    cfg.Sensor.Serial.BaudRate,
			ReadTimeout: cfg.Sensor.Serial.ReadTimeout.Std(),
			Triggered:   cfg.Sensor.TriggeredValue,
		})
	default:
		if os.Geteuid() != 0 {
			log.Warn("not running as root, pin access may be denied")
		}
		return sensor.NewGPIOReader(sensor.GPIOConfig{
			Chip:      cfg.Sensor.GPIO.Chip,
			OpenPin:   cfg.Sensor.GPIO.OpenPin,
			ClosedPin: cfg.Sensor.GPIO.ClosedPin,
			Triggered: cfg.Sensor.TriggeredValue,
		})
	}
}
