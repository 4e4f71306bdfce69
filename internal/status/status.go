// Package status provides a thread-safe status tracker for the cabinet daemon.
// The main loop writes to it once per tick; HTTP handlers read snapshots.
package status

import (
	"sync"
	"time"

	ring "github.com/zfjagann/golang-ring"

	"github.com/sweeney/pinball-cabinet/internal/coil"
	"github.com/sweeney/pinball-cabinet/internal/game"
	"github.com/sweeney/pinball-cabinet/internal/logic"
)

// RecentEvents is how many score events a snapshot carries.
const RecentEvents = 20

// Config contains daemon configuration for display.
type Config struct {
	TickMs           int64
	Backend          string
	DebounceTargetMs int64
	DebounceBumperMs int64
	CooldownTargetMs int64
	CooldownBumperMs int64
	PulseMs          int64
	HeartbeatMs      int64
	Broker           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Game          game.Snapshot
	Mode          string
	Counts        logic.EventCounts
	Coils         coil.Stats
	Recent        []logic.ScoreEvent // oldest first
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	recent ring.Ring
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	t := &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
	t.recent.SetCapacity(RecentEvents)
	return t
}

// Show records the scoreboard. It implements game.Display and is called
// from the main loop on every tick.
func (t *Tracker) Show(snap game.Snapshot) {
	t.mu.Lock()
	t.snap.Game = snap
	t.mu.Unlock()
}

// Record appends an accepted score event to the recent history.
func (t *Tracker) Record(e logic.ScoreEvent) {
	t.mu.Lock()
	t.recent.Enqueue(e)
	t.mu.Unlock()
}

// SetCounts sets the accepted/filtered counters.
func (t *Tracker) SetCounts(c logic.EventCounts) {
	t.mu.Lock()
	t.snap.Counts = c
	t.mu.Unlock()
}

// SetCoilStats sets the pulse counters.
func (t *Tracker) SetCoilStats(s coil.Stats) {
	t.mu.Lock()
	t.snap.Coils = s
	t.mu.Unlock()
}

// SetMode sets the hardware/simulation indicator.
func (t *Tracker) SetMode(mode string) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	values := t.recent.Values()
	t.mu.RUnlock()

	s.Recent = make([]logic.ScoreEvent, 0, len(values))
	for _, v := range values {
		if e, ok := v.(logic.ScoreEvent); ok {
			s.Recent = append(s.Recent, e)
		}
	}
	s.Now = time.Now()
	return s
}
