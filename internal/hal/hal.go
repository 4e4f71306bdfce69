// Package hal binds the cabinet's switches and coils to GPIO lines and falls
// back to inert stand-ins when no hardware is present, so the rest of the
// daemon runs unchanged on a development machine.
package hal

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/pinball-cabinet/internal/gpio"
	"github.com/sweeney/pinball-cabinet/internal/logic"
)

// ErrClosed is reported when binding after the hardware has been released.
var ErrClosed = errors.New("hal: hardware released")

// Mode distinguishes real hardware from the simulation fallback.
type Mode string

const (
	ModeHardware   Mode = "hardware"
	ModeSimulation Mode = "simulation"
)

// Opener opens a GPIO backend. It is called once by Open.
type Opener func() (gpio.Backend, error)

// Hardware is the process-wide pin registry. It owns every bound handle and
// releases them exactly once.
type Hardware struct {
	mu      sync.Mutex
	backend gpio.Backend
	mode    Mode
	inputs  []*Input
	outputs []*Output
	closed  bool
}

// Open tries the given backend. If open is nil or fails, the registry runs in
// simulation mode. Open never fails.
func Open(open Opener) *Hardware {
	h := &Hardware{mode: ModeSimulation}

	if open == nil {
		log.Printf("hal: simulation mode (no backend configured)")
		return h
	}

	backend, err := open()
	if err != nil {
		log.Printf("hal: simulation mode (hardware unavailable: %v)", err)
		return h
	}

	h.backend = backend
	h.mode = ModeHardware
	log.Printf("hal: running on real hardware (%s)", backend.Name())
	return h
}

// Mode reports whether handles are bound to real lines.
func (h *Hardware) Mode() Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mode
}

// BindInput binds a debounced input. A pin that cannot be bound yields a
// handle that is never active.
func (h *Hardware) BindInput(spec gpio.PinSpec, debounce time.Duration) *Input {
	h.mu.Lock()
	defer h.mu.Unlock()

	in := &Input{spec: spec, debouncer: logic.NewDebouncer(debounce)}

	switch {
	case h.closed:
		log.Printf("hal: input %s: %v", spec, ErrClosed)
		in.line, in.simulated = gpio.InertLine{}, true
		return in
	case h.backend == nil:
		in.line, in.simulated = gpio.InertLine{}, true
	default:
		line, err := h.backend.OpenInput(spec)
		if err != nil {
			log.Printf("hal: input %s unavailable, simulating: %v", spec, err)
			in.line, in.simulated = gpio.InertLine{}, true
		} else {
			in.line = line
		}
	}

	h.inputs = append(h.inputs, in)
	return in
}

// BindOutput binds an output that starts off. A pin that cannot be bound
// yields a handle whose writes are no-ops.
func (h *Hardware) BindOutput(spec gpio.PinSpec) *Output {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := &Output{spec: spec}

	switch {
	case h.closed:
		log.Printf("hal: output %s: %v", spec, ErrClosed)
		out.drv, out.simulated = gpio.InertDriver{}, true
		return out
	case h.backend == nil:
		out.drv, out.simulated = gpio.InertDriver{}, true
	default:
		drv, err := h.backend.OpenOutput(spec)
		if err != nil {
			log.Printf("hal: output %s unavailable, simulating: %v", spec, err)
			out.drv, out.simulated = gpio.InertDriver{}, true
		} else {
			out.drv = drv
		}
	}

	h.outputs = append(h.outputs, out)
	return out
}

// Close forces every output off, then releases every handle and the backend.
// Calling Close more than once is safe.
func (h *Hardware) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var errs []error

	for _, out := range h.outputs {
		if err := out.Off(); err != nil {
			errs = append(errs, fmt.Errorf("force off %s: %w", out.spec, err))
		}
	}
	for _, out := range h.outputs {
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, in := range h.inputs {
		if err := in.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if h.backend != nil {
		if err := h.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", h.backend.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
