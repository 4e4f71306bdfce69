// Package mqtt provides MQTT publishing with abstraction for testing.
// Score events feed external displays, sound cues feed an external audio
// player, and system events report the daemon lifecycle.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pinball-cabinet/internal/logic"
)

// Topic is the MQTT topic for score events.
const Topic = "pinball/cabinet/events"

// TopicSound is the MQTT topic for sound cues.
const TopicSound = "pinball/cabinet/sound"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "pinball/cabinet/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a score event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.ScoreEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Play sends a sound cue to the broker for the audio player.
	Play(sound logic.Sound) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Mode       string // "hardware" or "simulation"
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure for a score event.
type Payload struct {
	Score ScorePayload `json:"score"`
}

// ScorePayload contains the score event details.
type ScorePayload struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Delta     int64  `json:"delta"`
	Sound     string `json:"sound"`
}

// FormatPayload creates the JSON payload for a score event.
func FormatPayload(event logic.ScoreEvent) ([]byte, error) {
	payload := Payload{
		Score: ScorePayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Source:    string(event.Source),
			Delta:     event.Delta,
			Sound:     string(event.Sound),
		},
	}
	return json.Marshal(payload)
}

// SoundPayload is the MQTT message payload for a sound cue.
type SoundPayload struct {
	Sound string `json:"sound"`
}

// FormatSoundPayload creates the JSON payload for a sound cue.
func FormatSoundPayload(sound logic.Sound) ([]byte, error) {
	return json.Marshal(SoundPayload{Sound: string(sound)})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Mode:      event.Mode,
		},
	}
	return json.Marshal(payload)
}
