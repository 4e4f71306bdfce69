package coil

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// recorder is an Actuator that records the time of every transition.
type recorder struct {
	mu    sync.Mutex
	on    bool
	ons   []time.Time
	offs  []time.Time
	onErr error
}

func (r *recorder) On() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.onErr != nil {
		return r.onErr
	}
	r.on = true
	r.ons = append(r.ons, time.Now())
	return nil
}

func (r *recorder) Off() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.on = false
	r.offs = append(r.offs, time.Now())
	return nil
}

func (r *recorder) isOn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.on
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ons), len(r.offs)
}

// manualTimer replaces time.After so tests decide when pulses end.
type manualTimer struct {
	mu    sync.Mutex
	chans []chan time.Time
}

func (m *manualTimer) after(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	m.mu.Lock()
	m.chans = append(m.chans, ch)
	m.mu.Unlock()
	return ch
}

func (m *manualTimer) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chans)
}

// fire ends the oldest pending pulse.
func (m *manualTimer) fire() {
	m.mu.Lock()
	ch := m.chans[0]
	m.chans = m.chans[1:]
	m.mu.Unlock()
	ch <- time.Now()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func newManualController(t *testing.T, cfg Config) (*Controller, *manualTimer) {
	t.Helper()
	c := New(cfg)
	mt := &manualTimer{}
	c.after = mt.after
	return c, mt
}

func TestPulseRealTiming(t *testing.T) {
	c := New(Config{Duration: 30 * time.Millisecond, Workers: 4})
	r := &recorder{}
	c.Add("bumper-1-coil", r)

	start := time.Now()
	if !c.Pulse("bumper-1-coil") {
		t.Fatal("pulse refused")
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Errorf("Pulse blocked the caller for %v", time.Since(start))
	}

	waitFor(t, "coil on", func() bool { ons, _ := r.counts(); return ons == 1 })
	waitFor(t, "coil off", func() bool { _, offs := r.counts(); return offs == 1 })

	r.mu.Lock()
	held := r.offs[0].Sub(r.ons[0])
	r.mu.Unlock()
	if held < 30*time.Millisecond {
		t.Errorf("coil held for %v, want at least 30ms", held)
	}
	if r.isOn() {
		t.Error("coil should be off after the pulse")
	}
}

func TestPulseUnknownCoil(t *testing.T) {
	c := New(Config{Duration: time.Millisecond})
	if c.Pulse("nope") {
		t.Error("expected unknown coil to be refused")
	}
	if c.Stats().Refused != 1 {
		t.Errorf("Refused: got %d, want 1", c.Stats().Refused)
	}
}

func TestOverlappingPulsesLastOffWins(t *testing.T) {
	c, mt := newManualController(t, Config{Duration: 100 * time.Millisecond, Workers: 4})
	r := &recorder{}
	c.Add("coil", r)

	c.Pulse("coil")
	waitFor(t, "first pulse", func() bool { return mt.pending() == 1 })
	c.Pulse("coil")
	waitFor(t, "second pulse", func() bool { return mt.pending() == 2 })

	if got := c.InFlight("coil"); got != 2 {
		t.Fatalf("InFlight: got %d, want 2", got)
	}

	mt.fire()
	waitFor(t, "first pulse end", func() bool { return c.InFlight("coil") == 1 })
	if !r.isOn() {
		t.Error("coil should stay on while a pulse is in flight")
	}

	mt.fire()
	waitFor(t, "second pulse end", func() bool { return c.InFlight("coil") == 0 })
	waitFor(t, "coil off", func() bool { return !r.isOn() })

	ons, offs := r.counts()
	if ons != 1 || offs != 1 {
		t.Errorf("expected a single on/off cycle, got ons=%d offs=%d", ons, offs)
	}
	if c.Stats().Fired != 2 {
		t.Errorf("Fired: got %d, want 2", c.Stats().Fired)
	}
}

func TestMaxHoldRefusesExtension(t *testing.T) {
	c, mt := newManualController(t, Config{Duration: 100 * time.Millisecond, MaxHold: 150 * time.Millisecond, Workers: 4})
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := base
	c.now = func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	r := &recorder{}
	c.Add("coil", r)

	c.Pulse("coil")
	waitFor(t, "first pulse", func() bool { return mt.pending() == 1 })

	// 40ms later: would hold until 140ms, inside the cap
	mu.Lock()
	now = base.Add(40 * time.Millisecond)
	mu.Unlock()
	c.Pulse("coil")
	waitFor(t, "second pulse", func() bool { return mt.pending() == 2 })

	// 60ms later: would hold until 160ms, past the cap
	mu.Lock()
	now = base.Add(60 * time.Millisecond)
	mu.Unlock()
	if !c.Pulse("coil") {
		t.Error("pulse past the cap should still be scheduled")
	}
	waitFor(t, "refusal", func() bool { return c.Stats().Refused == 1 })

	if got := c.InFlight("coil"); got != 2 {
		t.Errorf("InFlight: got %d, want 2", got)
	}

	mt.fire()
	mt.fire()
	waitFor(t, "coil off", func() bool { return !r.isOn() })
}

func TestPoolSaturationRefuses(t *testing.T) {
	c, mt := newManualController(t, Config{Duration: 100 * time.Millisecond, Workers: 1})
	c.Add("a", &recorder{})
	c.Add("b", &recorder{})

	if !c.Pulse("a") {
		t.Fatal("first pulse should be accepted")
	}
	waitFor(t, "first pulse", func() bool { return mt.pending() == 1 })

	start := time.Now()
	if c.Pulse("b") {
		t.Error("pulse should be refused while the pool is full")
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Error("refusal should not block")
	}

	mt.fire()
	waitFor(t, "pool drained", func() bool { return c.InFlight("a") == 0 })
	waitFor(t, "slot free", func() bool { return c.Pulse("b") })
	waitFor(t, "b pulse", func() bool { return mt.pending() == 1 })
	mt.fire()
}

func TestActuatorFaultAbandonsPulse(t *testing.T) {
	c := New(Config{Duration: time.Millisecond, Workers: 2})
	r := &recorder{onErr: errors.New("driver fault")}
	c.Add("coil", r)

	c.Pulse("coil")
	waitFor(t, "fault", func() bool { return c.Stats().Faults == 1 })

	if r.isOn() {
		t.Error("faulted coil should be assumed off")
	}
	if _, offs := r.counts(); offs != 1 {
		t.Errorf("expected a forced off after the fault, got %d", offs)
	}
	if c.InFlight("coil") != 0 {
		t.Error("faulted pulse should not stay in flight")
	}

	// The next pulse works once the fault clears
	r.mu.Lock()
	r.onErr = nil
	r.mu.Unlock()
	c.Pulse("coil")
	waitFor(t, "recovery", func() bool { ons, offs := r.counts(); return ons == 1 && offs == 2 })
}

func TestShutdownWaitsForInFlight(t *testing.T) {
	c, mt := newManualController(t, Config{Duration: 100 * time.Millisecond, Workers: 8})
	coils := map[string]*recorder{"a": {}, "b": {}, "c": {}}
	for name, r := range coils {
		c.Add(name, r)
	}
	for name := range coils {
		c.Pulse(name)
	}
	waitFor(t, "pulses", func() bool { return mt.pending() == 3 })

	done := make(chan error)
	go func() { done <- c.Shutdown() }()

	select {
	case <-done:
		t.Fatal("Shutdown returned with pulses in flight")
	case <-time.After(20 * time.Millisecond):
	}

	if c.Pulse("a") {
		t.Error("pulse during shutdown should be refused")
	}

	mt.fire()
	mt.fire()
	mt.fire()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return")
	}

	for name, r := range coils {
		if r.isOn() {
			t.Errorf("coil %s left on after shutdown", name)
		}
	}

	if err := c.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestNewClampsWorkers(t *testing.T) {
	c := New(Config{})
	if c.cfg.Workers != 1 {
		t.Errorf("Workers: got %d, want 1", c.cfg.Workers)
	}
}
