package logic

import "time"

// Gate enforces a minimum interval between accepted events per source.
// Debounce removes electrical noise; the gate paces gameplay.
// Not safe for concurrent use; the main loop owns it.
type Gate struct {
	cooldowns map[SourceID]time.Duration
	last      map[SourceID]time.Time
}

// NewGate creates a gate with the given per-source cooldown windows.
// Sources absent from the map have no cooldown. Negative windows are treated as zero.
func NewGate(cooldowns map[SourceID]time.Duration) *Gate {
	g := &Gate{
		cooldowns: make(map[SourceID]time.Duration, len(cooldowns)),
		last:      make(map[SourceID]time.Time),
	}
	for id, d := range cooldowns {
		if d < 0 {
			d = 0
		}
		g.cooldowns[id] = d
	}
	return g
}

// Cooldown returns the window configured for a source.
func (g *Gate) Cooldown(id SourceID) time.Duration {
	return g.cooldowns[id]
}

// TryAccept accepts a trigger from source id at now iff the cooldown has
// elapsed since the last accepted trigger from that source. A rejection
// leaves the gate unchanged.
func (g *Gate) TryAccept(id SourceID, now time.Time) bool {
	last, seen := g.last[id]
	if seen && !Elapsed(last, now, g.cooldowns[id]) {
		return false
	}

	g.last[id] = now
	return true
}

// LastAccepted returns the timestamp of the last accepted trigger from id.
func (g *Gate) LastAccepted(id SourceID) (time.Time, bool) {
	t, ok := g.last[id]
	return t, ok
}

// Reset forgets every accepted timestamp.
func (g *Gate) Reset() {
	g.last = make(map[SourceID]time.Time)
}

// Elapsed reports whether at least cooldown has passed between last and now.
// A now earlier than last never counts as elapsed.
func Elapsed(last, now time.Time, cooldown time.Duration) bool {
	if now.Before(last) {
		return false
	}
	return now.Sub(last) >= cooldown
}
