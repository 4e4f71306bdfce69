// Package logic contains the pure input-filtering rules for the cabinet.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"strings"
	"time"
)

// SourceID identifies a physical (or manual) event source.
type SourceID string

const (
	SourceTarget     SourceID = "target"
	SourceBumper1    SourceID = "bumper-1"
	SourceBumper2    SourceID = "bumper-2"
	SourceCompletion SourceID = "completion"
)

// IsBumper reports whether the source is one of the "bumper-N" family.
func (s SourceID) IsBumper() bool {
	return strings.HasPrefix(string(s), "bumper-") && len(s) > len("bumper-")
}

// Coil returns the actuator name paired with a bumper source.
func (s SourceID) Coil() string {
	return string(s) + "-coil"
}

// Sound is the feedback cue emitted for an accepted event.
type Sound string

const (
	SoundNone    Sound = "none"
	SoundHit     Sound = "hit"
	SoundBumper  Sound = "bumper"
	SoundJackpot Sound = "jackpot"
)

// ScoreEvent is produced once per accepted trigger and consumed in the same tick.
type ScoreEvent struct {
	Timestamp time.Time
	Source    SourceID
	Delta     int64
	Sound     Sound
}

// EventCounts tracks accepted and filtered triggers since startup.
type EventCounts struct {
	Target   int
	Bumper   int
	Jackpot  int
	Filtered int // debounce-settled triggers rejected by the cooldown gate
}

// Count records an accepted event.
func (c *EventCounts) Count(e ScoreEvent) {
	switch {
	case e.Source == SourceTarget:
		c.Target++
	case e.Source.IsBumper():
		c.Bumper++
	case e.Source == SourceCompletion:
		c.Jackpot++
	}
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
