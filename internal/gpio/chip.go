//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Chip opens lines on a Linux GPIO character device.
type Chip struct {
	chip *gpiocdev.Chip
}

// NewChip opens the named GPIO chip, e.g. "gpiochip0".
func NewChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer("pinball-cabinet"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{chip: chip}, nil
}

// Name implements Backend.
func (c *Chip) Name() string {
	return "gpiocdev:" + c.chip.Name
}

// OpenInput requests the line as an input. Active-low switches get a pull-up,
// active-high switches a pull-down, so an unconnected switch reads inactive.
func (c *Chip) OpenInput(spec PinSpec) (Line, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullDown}
	if spec.ActiveLow {
		opts = []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow}
	}

	l, err := c.chip.RequestLine(spec.Pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request input %s: %w", spec, err)
	}
	return &chipLine{line: l, spec: spec}, nil
}

// OpenOutput requests the line as an output driven inactive.
func (c *Chip) OpenOutput(spec PinSpec) (Driver, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if spec.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	l, err := c.chip.RequestLine(spec.Pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request output %s: %w", spec, err)
	}
	return &chipDriver{line: l, spec: spec}, nil
}

// Close releases the chip.
func (c *Chip) Close() error {
	if err := c.chip.Close(); err != nil {
		return fmt.Errorf("close chip: %w", err)
	}
	return nil
}

type chipLine struct {
	line *gpiocdev.Line
	spec PinSpec
}

func (l *chipLine) Value() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", l.spec, err)
	}
	return v == 1, nil
}

func (l *chipLine) Close() error {
	if err := l.line.Close(); err != nil {
		return fmt.Errorf("close %s: %w", l.spec, err)
	}
	return nil
}

type chipDriver struct {
	line *gpiocdev.Line
	spec PinSpec
}

func (d *chipDriver) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := d.line.SetValue(v); err != nil {
		return fmt.Errorf("write %s: %w", d.spec, err)
	}
	return nil
}

// Close reconfigures the line to input with pull-down (matching Pi boot
// defaults) before releasing it, so the coil driver cannot be left energized.
func (d *chipDriver) Close() error {
	var errs []error
	if err := d.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure %s: %w", d.spec, err))
	}
	if err := d.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", d.spec, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
