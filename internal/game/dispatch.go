package game

import (
	"log"
	"time"

	"github.com/sweeney/pinball-cabinet/internal/logic"
)

// Score deltas per source.
const (
	TargetScore  int64 = 500
	BumperScore  int64 = 100
	JackpotScore int64 = 10000
)

// SoundSink plays (or forwards) a feedback cue.
type SoundSink interface {
	Play(sound logic.Sound) error
}

// Pulser fires a coil pulse without blocking.
type Pulser interface {
	Pulse(name string) bool
}

// Display receives the scoreboard once per tick.
type Display interface {
	Show(snap Snapshot)
}

// Dispatcher turns accepted triggers into score events.
type Dispatcher struct {
	state  *State
	sound  SoundSink
	pulser Pulser
}

// NewDispatcher creates a dispatcher mutating state. sound and pulser may be nil.
func NewDispatcher(state *State, sound SoundSink, pulser Pulser) *Dispatcher {
	return &Dispatcher{state: state, sound: sound, pulser: pulser}
}

// State returns the scoreboard the dispatcher mutates.
func (d *Dispatcher) State() *State {
	return d.state
}

// EventFor maps a source to its score delta and sound.
// Unknown sources score nothing.
func EventFor(source logic.SourceID) (int64, logic.Sound) {
	switch {
	case source == logic.SourceTarget:
		return TargetScore, logic.SoundHit
	case source.IsBumper():
		return BumperScore, logic.SoundBumper
	case source == logic.SourceCompletion:
		return JackpotScore, logic.SoundJackpot
	default:
		return 0, logic.SoundNone
	}
}

// Dispatch applies exactly one score event for a trigger already accepted by
// the gate. Bumpers also pulse their coil; completion sets the jackpot flag.
// Balls and letters are left alone.
func (d *Dispatcher) Dispatch(source logic.SourceID, now time.Time) logic.ScoreEvent {
	delta, sound := EventFor(source)
	event := logic.ScoreEvent{
		Timestamp: now,
		Source:    source,
		Delta:     delta,
		Sound:     sound,
	}

	if source.IsBumper() && d.pulser != nil {
		d.pulser.Pulse(source.Coil())
	}

	d.state.AddScore(delta)
	if source == logic.SourceCompletion {
		d.state.Jackpot = true
	}

	if sound != logic.SoundNone && d.sound != nil {
		if err := d.sound.Play(sound); err != nil {
			log.Printf("sound %s: %v", sound, err)
		}
	}

	return event
}

// CollectLetter records a letter and, when it is the final one, dispatches
// the completion event. It returns the event and whether one was produced.
func (d *Dispatcher) CollectLetter(now time.Time) (logic.ScoreEvent, bool) {
	if !d.state.CollectLetter() {
		return logic.ScoreEvent{}, false
	}
	return d.Dispatch(logic.SourceCompletion, now), true
}
