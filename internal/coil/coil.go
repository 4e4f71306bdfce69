// Package coil fires timed solenoid pulses without blocking the main loop.
// Each pulse runs on a bounded, joinable worker pool so shutdown can wait for
// every in-flight pulse before the hardware is released.
package coil

import (
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Actuator drives a single coil.
type Actuator interface {
	On() error
	Off() error
}

// Config controls pulse timing.
type Config struct {
	// Duration is how long each pulse holds the coil on.
	Duration time.Duration
	// MaxHold caps how long overlapping pulses may keep a coil energized.
	// Zero disables the cap.
	MaxHold time.Duration
	// Workers bounds the number of concurrent pulses across all coils.
	Workers int
}

// Stats counts pulse outcomes since startup.
type Stats struct {
	Fired   int
	Refused int // pool saturated, duty-cycle cap, unknown coil, or shut down
	Faults  int
}

// Controller schedules pulses.
type Controller struct {
	cfg   Config
	after func(time.Duration) <-chan time.Time
	now   func() time.Time

	mu     sync.Mutex
	coils  map[string]*coil
	stats  Stats
	closed bool

	group errgroup.Group
}

type coil struct {
	name string
	act  Actuator

	mu       sync.Mutex
	inflight int
	onSince  time.Time
}

// New creates a controller. Workers < 1 is treated as 1.
func New(cfg Config) *Controller {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	c := &Controller{
		cfg:   cfg,
		after: time.After,
		now:   time.Now,
		coils: make(map[string]*coil),
	}
	c.group.SetLimit(cfg.Workers)
	return c
}

// Add registers a coil under name. The actuator is assumed off.
func (c *Controller) Add(name string, act Actuator) {
	c.mu.Lock()
	c.coils[name] = &coil{name: name, act: act}
	c.mu.Unlock()
}

// Pulse energizes the named coil and de-energizes it after the configured
// duration. It never blocks. It returns false if the pulse could not be
// scheduled. Overlapping pulses on one coil keep it on until the last one
// ends; an overlap that would exceed MaxHold is refused on the worker and
// counted in Stats.Refused.
func (c *Controller) Pulse(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl, ok := c.coils[name]
	if c.closed || !ok {
		c.stats.Refused++
		return false
	}

	started := c.group.TryGo(func() error {
		c.run(cl)
		return nil
	})
	if !started {
		log.Printf("coil: %s: %d pulses in flight, pulse refused", name, c.cfg.Workers)
		c.stats.Refused++
		return false
	}
	return true
}

func (c *Controller) run(cl *coil) {
	if err := c.begin(cl); err != nil {
		log.Printf("coil: %v", err)
		return
	}

	<-c.after(c.cfg.Duration)

	if err := c.end(cl); err != nil {
		log.Printf("coil: %v", err)
		c.count(func(s *Stats) { s.Faults++ })
	}
}

func (c *Controller) begin(cl *coil) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := c.now()

	if cl.inflight > 0 {
		if c.cfg.MaxHold > 0 && now.Add(c.cfg.Duration).Sub(cl.onSince) > c.cfg.MaxHold {
			c.count(func(s *Stats) { s.Refused++ })
			return fmt.Errorf("%s: held on since %s, pulse refused", cl.name, cl.onSince.Format(time.StampMilli))
		}
		cl.inflight++
		c.count(func(s *Stats) { s.Fired++ })
		return nil
	}

	if err := cl.act.On(); err != nil {
		// Assume off and abandon the pulse
		c.count(func(s *Stats) { s.Faults++ })
		if offErr := cl.act.Off(); offErr != nil {
			return fmt.Errorf("%s fault, pulse abandoned: %v (off: %v)", cl.name, err, offErr)
		}
		return fmt.Errorf("%s fault, pulse abandoned: %w", cl.name, err)
	}

	cl.inflight = 1
	cl.onSince = now
	c.count(func(s *Stats) { s.Fired++ })
	return nil
}

func (c *Controller) end(cl *coil) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.inflight--
	if cl.inflight > 0 {
		return nil
	}
	cl.inflight = 0
	if err := cl.act.Off(); err != nil {
		return fmt.Errorf("%s: de-energize: %w", cl.name, err)
	}
	return nil
}

func (c *Controller) count(f func(*Stats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}

// InFlight returns the number of pulses currently holding the named coil on.
func (c *Controller) InFlight(name string) int {
	c.mu.Lock()
	cl, ok := c.coils[name]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.inflight
}

// Stats returns a copy of the pulse counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Shutdown refuses new pulses, waits for every in-flight pulse to finish,
// then forces every coil off. Calling Shutdown more than once is safe.
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	c.closed = true
	coils := make([]*coil, 0, len(c.coils))
	for _, cl := range c.coils {
		coils = append(coils, cl)
	}
	c.mu.Unlock()

	c.group.Wait()

	var errs []error
	for _, cl := range coils {
		cl.mu.Lock()
		cl.inflight = 0
		if err := cl.act.Off(); err != nil {
			errs = append(errs, fmt.Errorf("force off %s: %w", cl.name, err))
		}
		cl.mu.Unlock()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
