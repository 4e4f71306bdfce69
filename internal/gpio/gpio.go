// Package gpio provides raw digital input and output lines with hardware abstraction.
// The chip implementation uses the Linux GPIO character device, the periph
// implementation uses periph.io host drivers, and the inert and fake
// implementations allow running and testing without hardware.
package gpio

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a backend cannot run on this platform.
var ErrUnsupported = errors.New("gpio: not supported on this platform")

// PinSpec identifies a single line.
type PinSpec struct {
	// Pin is the BCM line offset.
	Pin int
	// ActiveLow inverts the logical level, for switches wired to ground.
	ActiveLow bool
}

func (p PinSpec) String() string {
	if p.ActiveLow {
		return fmt.Sprintf("GPIO%d(active-low)", p.Pin)
	}
	return fmt.Sprintf("GPIO%d", p.Pin)
}

// Line reads a single digital input.
type Line interface {
	// Value returns the logical level: true = asserted.
	Value() (bool, error)

	// Close releases the line.
	Close() error
}

// Driver drives a single digital output.
type Driver interface {
	// Set drives the logical level: true = energized.
	Set(high bool) error

	// Close releases the line.
	Close() error
}

// Backend opens lines on a GPIO controller.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	OpenInput(spec PinSpec) (Line, error)
	OpenOutput(spec PinSpec) (Driver, error)

	// Close releases the controller. Lines must be closed first.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinTarget  = 17 // strike plate
	DefaultPinBumper1 = 27
	DefaultPinBumper2 = 22
	DefaultPinCoil1   = 23
	DefaultPinCoil2   = 24
)
