package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/pinball-cabinet/internal/logic"
)

// bufferCapacity is how many messages are kept while the broker is unreachable.
const bufferCapacity = 256

// RealPublisher publishes to an actual MQTT broker. Publishing never blocks
// the caller: messages are handed to the client, or buffered while
// disconnected and replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu      sync.Mutex
	buffer  *ringBuffer
	hadConn bool
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background and retried until Close.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{buffer: newRingBuffer(bufferCapacity)}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("pinball-cabinet").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("mqtt: connect to %s: %v", broker, err)
		}
	}()

	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	pending := p.buffer.drainAll()
	reconnect := p.hadConn
	p.hadConn = true
	p.mu.Unlock()

	if reconnect {
		log.Printf("mqtt: reconnected, replaying %d messages", len(pending))
		if payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"}); err == nil {
			c.Publish(TopicSystem, 1, false, payload)
		}
	} else {
		log.Printf("mqtt: connected, replaying %d messages", len(pending))
	}

	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

func (p *RealPublisher) send(msg bufferedMsg) {
	// Holding mu across the check means onConnect drains anything pushed here
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.buffer.push(msg)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: publish to %s timed out", msg.topic)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: publish to %s: %v", msg.topic, err)
		}
	}()
}

// Publish sends a score event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.ScoreEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	p.send(bufferedMsg{topic: Topic, payload: payload})
	return nil
}

// Play sends a sound cue to the MQTT broker.
func (p *RealPublisher) Play(sound logic.Sound) error {
	payload, err := FormatSoundPayload(sound)
	if err != nil {
		return fmt.Errorf("format sound payload: %w", err)
	}

	// A stale cue is worse than a missing one: never buffered
	if !p.client.IsConnectionOpen() {
		return fmt.Errorf("sound %s: not connected", sound)
	}
	p.client.Publish(TopicSound, 0, false, payload)
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
