package gpio

// InertLine stands in for an input when no hardware is present.
// It always reads inactive.
type InertLine struct{}

// Value always returns false.
func (InertLine) Value() (bool, error) { return false, nil }

// Close is a no-op.
func (InertLine) Close() error { return nil }

// InertDriver stands in for an output when no hardware is present.
type InertDriver struct{}

// Set is a no-op.
func (InertDriver) Set(bool) error { return nil }

// Close is a no-op.
func (InertDriver) Close() error { return nil }
