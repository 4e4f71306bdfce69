package game

import (
	"log"

	"github.com/sweeney/pinball-cabinet/internal/logic"
)

// LogSound writes cues to the log. Used when no audio player is attached.
type LogSound struct{}

// Play implements SoundSink.
func (LogSound) Play(sound logic.Sound) error {
	log.Printf("sound: %s", sound)
	return nil
}

// MultiSound forwards each cue to every sink, returning the first error.
type MultiSound []SoundSink

// Play implements SoundSink.
func (m MultiSound) Play(sound logic.Sound) error {
	var first error
	for _, s := range m {
		if err := s.Play(sound); err != nil && first == nil {
			first = err
		}
	}
	return first
}
