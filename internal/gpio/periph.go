package gpio

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// Periph opens lines through the periph.io host drivers (sysfs or
// memory-mapped, whichever the host supports).
type Periph struct{}

// NewPeriph initialises the periph.io host drivers.
func NewPeriph() (*Periph, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	if len(state.Loaded) == 0 {
		return nil, fmt.Errorf("init periph host: no drivers loaded: %w", ErrUnsupported)
	}
	return &Periph{}, nil
}

// Name implements Backend.
func (p *Periph) Name() string {
	return "periph"
}

func lookup(spec PinSpec) (gpio.PinIO, error) {
	name := fmt.Sprintf("GPIO%d", spec.Pin)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("pin %s not found", name)
	}
	return pin, nil
}

// OpenInput configures the pin as an input with the pull matching its polarity.
func (p *Periph) OpenInput(spec PinSpec) (Line, error) {
	pin, err := lookup(spec)
	if err != nil {
		return nil, err
	}
	pull := gpio.PullDown
	if spec.ActiveLow {
		pull = gpio.PullUp
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure input %s: %w", spec, err)
	}
	return &periphLine{pin: pin, spec: spec}, nil
}

// OpenOutput configures the pin as an output driven inactive.
func (p *Periph) OpenOutput(spec PinSpec) (Driver, error) {
	pin, err := lookup(spec)
	if err != nil {
		return nil, err
	}
	d := &periphDriver{pin: pin, spec: spec}
	if err := d.Set(false); err != nil {
		return nil, fmt.Errorf("configure output %s: %w", spec, err)
	}
	return d, nil
}

// Close implements Backend. The host drivers stay registered for the process.
func (p *Periph) Close() error {
	return nil
}

type periphLine struct {
	pin  gpio.PinIO
	spec PinSpec
}

func (l *periphLine) Value() (bool, error) {
	high := l.pin.Read() == gpio.High
	return high != l.spec.ActiveLow, nil
}

func (l *periphLine) Close() error {
	return l.pin.Halt()
}

type periphDriver struct {
	pin  gpio.PinIO
	spec PinSpec
}

func (d *periphDriver) Set(high bool) error {
	level := gpio.Level(high != d.spec.ActiveLow)
	if err := d.pin.Out(level); err != nil {
		return fmt.Errorf("write %s: %w", d.spec, err)
	}
	return nil
}

// Close returns the pin to input with pull-down.
func (d *periphDriver) Close() error {
	if err := d.pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return fmt.Errorf("release %s: %w", d.spec, err)
	}
	return nil
}
