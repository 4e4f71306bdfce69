//go:build !linux

package gpio

// Chip is not available on non-Linux platforms.
type Chip struct{}

// NewChip returns ErrUnsupported on non-Linux platforms.
func NewChip(name string) (*Chip, error) {
	return nil, ErrUnsupported
}

// Name implements Backend.
func (c *Chip) Name() string {
	return "gpiocdev"
}

// OpenInput is not implemented on non-Linux platforms.
func (c *Chip) OpenInput(spec PinSpec) (Line, error) {
	return nil, ErrUnsupported
}

// OpenOutput is not implemented on non-Linux platforms.
func (c *Chip) OpenOutput(spec PinSpec) (Driver, error) {
	return nil, ErrUnsupported
}

// Close is not implemented on non-Linux platforms.
func (c *Chip) Close() error {
	return nil
}
