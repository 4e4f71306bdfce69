package hal

import (
	"log"
	"time"

	"github.com/sweeney/pinball-cabinet/internal/gpio"
	"github.com/sweeney/pinball-cabinet/internal/logic"
)

// Input is a debounced digital input. It is sampled from the main loop only.
type Input struct {
	line      gpio.Line
	spec      gpio.PinSpec
	debouncer *logic.Debouncer
	simulated bool
	faulted   bool
	closed    bool
}

// Spec returns the pin this handle was bound to.
func (i *Input) Spec() gpio.PinSpec {
	return i.spec
}

// Simulated reports whether the handle is an inert stand-in.
func (i *Input) Simulated() bool {
	return i.simulated
}

// Active samples the raw level at now and reports whether it has been held
// asserted for at least the debounce window. A read failure counts as
// inactive; the first failure of a streak is logged.
func (i *Input) Active(now time.Time) bool {
	if i.closed {
		return false
	}

	raw, err := i.line.Value()
	if err != nil {
		if !i.faulted {
			log.Printf("hal: input %s read failed, treating as inactive: %v", i.spec, err)
			i.faulted = true
		}
		return i.debouncer.Update(false, now)
	}
	if i.faulted {
		log.Printf("hal: input %s recovered", i.spec)
		i.faulted = false
	}

	return i.debouncer.Update(raw, now)
}

// Close releases the line. Calling Close more than once is safe.
func (i *Input) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	return i.line.Close()
}
