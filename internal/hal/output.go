package hal

import (
	"fmt"
	"sync"

	"github.com/sweeney/pinball-cabinet/internal/gpio"
)

// Output drives a coil. On and Off may be called from any goroutine.
// The requested state is tracked even in simulation, so actuation intent
// stays observable without hardware.
type Output struct {
	mu        sync.Mutex
	drv       gpio.Driver
	spec      gpio.PinSpec
	on        bool
	simulated bool
	closed    bool
}

// Spec returns the pin this handle was bound to.
func (o *Output) Spec() gpio.PinSpec {
	return o.spec
}

// Simulated reports whether the handle is an inert stand-in.
func (o *Output) Simulated() bool {
	return o.simulated
}

// On energizes the coil. After Close it is a no-op.
func (o *Output) On() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	if err := o.drv.Set(true); err != nil {
		return fmt.Errorf("energize %s: %w", o.spec, err)
	}
	o.on = true
	return nil
}

// Off de-energizes the coil. The handle is marked off even if the write fails.
func (o *Output) Off() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.on = false
	if err := o.drv.Set(false); err != nil {
		return fmt.Errorf("de-energize %s: %w", o.spec, err)
	}
	return nil
}

// IsOn reports the last requested state.
func (o *Output) IsOn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.on
}

// Close releases the line. Calling Close more than once is safe.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.on = false
	return o.drv.Close()
}
