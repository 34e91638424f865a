package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// bufferCapacity bounds the number of messages held while disconnected.
// Door events are rare, so a small buffer covers long broker outages.
const bufferCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages that cannot
// be sent while the connection is down are buffered and replayed on
// reconnect, oldest first.
type RealPublisher struct {
	client paho.Client
	log    *zap.Logger

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker, clientID string, log *zap.Logger) (*RealPublisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if clientID == "" {
		clientID = "garage-monitor"
	}

	p := &RealPublisher{
		log:    log,
		buffer: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			p.replayBuffered()
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// PublishDoor sends a door transition at QoS 0.
func (p *RealPublisher) PublishDoor(event DoorEvent) error {
	payload, err := FormatDoorPayload(event)
	if err != nil {
		return fmt.Errorf("format door payload: %w", err)
	}
	return p.publish(Topic, payload, 0, false)
}

// PublishSystem sends a lifecycle event at QoS 1 so shutdown messages are
// not silently lost.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, payload, 1, event.Retained)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds
	return nil
}

func (p *RealPublisher) publish(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnectionOpen() {
		p.bufferMsg(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return fmt.Errorf("broker disconnected, message buffered")
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.bufferMsg(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return fmt.Errorf("publish timeout, message buffered")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *RealPublisher) bufferMsg(msg bufferedMsg) {
	p.mu.Lock()
	p.buffer.push(msg)
	if p.buffer.overflowed() {
		p.log.Warn("mqtt buffer full, dropping oldest message",
			zap.Int("capacity", bufferCapacity))
	}
	p.mu.Unlock()
}

// replayBuffered runs on (re)connect from the paho callback goroutine.
func (p *RealPublisher) replayBuffered() {
	p.mu.Lock()
	msgs := p.buffer.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}

	p.log.Info("replaying buffered mqtt messages", zap.Int("count", len(msgs)))
	for _, m := range msgs {
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5 * time.Second) {
			p.log.Warn("replay publish timeout", zap.String("topic", m.topic))
		} else if err := token.Error(); err != nil {
			p.log.Warn("replay publish failed", zap.String("topic", m.topic), zap.Error(err))
		}
	}
}
