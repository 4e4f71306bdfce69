// Package game holds the scoreboard state and maps accepted triggers to score
// changes, feedback sounds and coil pulses.
package game

// Initial values applied at start-up and by Reset.
const (
	InitialBalls = 2
	LettersToWin = 7
)

// State is the scoreboard. It is owned by the main loop and not safe for
// concurrent use; readers get a Snapshot.
type State struct {
	Score     int64
	HighScore int64 // best score this run, survives Reset
	Balls     int
	Collected int
	Jackpot   bool
}

// NewState returns a fresh game: score 0, two balls, no letters, no jackpot.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores the start-of-game values in one step.
func (s *State) Reset() {
	s.Score = 0
	s.Balls = InitialBalls
	s.Collected = 0
	s.Jackpot = false
}

// AddScore applies delta, saturating at zero.
func (s *State) AddScore(delta int64) {
	s.Score += delta
	if s.Score < 0 {
		s.Score = 0
	}
	if s.Score > s.HighScore {
		s.HighScore = s.Score
	}
}

// DrainBall removes a ball, saturating at zero. It reports whether the game
// is now over.
func (s *State) DrainBall() bool {
	if s.Balls > 0 {
		s.Balls--
	}
	return s.Balls == 0
}

// CollectLetter adds a letter, capped at LettersToWin. It reports whether this
// call collected the final letter.
func (s *State) CollectLetter() bool {
	if s.Collected >= LettersToWin {
		return false
	}
	s.Collected++
	return s.Collected == LettersToWin
}

// Snapshot is a point-in-time copy of the scoreboard for display.
type Snapshot struct {
	Score     int64
	HighScore int64
	Balls     int
	Collected int
	Jackpot   bool
}

// Snapshot returns a copy of the state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Score:     s.Score,
		HighScore: s.HighScore,
		Balls:     s.Balls,
		Collected: s.Collected,
		Jackpot:   s.Jackpot,
	}
}
