package gpio

import (
	"errors"
	"fmt"
	"sync"
)

// FakeLine is a test double that returns scripted input levels.
type FakeLine struct {
	// Samples contains scripted levels to return.
	// Each call to Value() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed counts calls to Close
	Closed int

	// ReadError, if set, will be returned by Value()
	ReadError error
}

// NewFakeLine creates a FakeLine with the given samples.
func NewFakeLine(samples ...bool) *FakeLine {
	return &FakeLine{Samples: samples}
}

// Value returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeLine) Value() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close records the call.
func (f *FakeLine) Close() error {
	f.Closed++
	return nil
}

// Reset resets the line to the beginning of samples.
func (f *FakeLine) Reset() {
	f.index = 0
	f.Closed = 0
}

// FakeDriver records every level written to it. Safe for concurrent use,
// since pulses write from pool goroutines.
type FakeDriver struct {
	mu      sync.Mutex
	writes  []bool
	high    bool
	closed  int
	setErr  error
	highErr error
}

// NewFakeDriver creates a FakeDriver that starts inactive.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the level.
func (f *FakeDriver) Set(high bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if high && f.highErr != nil {
		return f.highErr
	}
	f.writes = append(f.writes, high)
	f.high = high
	return nil
}

// Close records the call.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

// High reports the last level written.
func (f *FakeDriver) High() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.high
}

// Writes returns a copy of every level written so far.
func (f *FakeDriver) Writes() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.writes))
	copy(out, f.writes)
	return out
}

// Closed returns how many times Close was called.
func (f *FakeDriver) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FailWrites makes every subsequent Set return err (nil clears it).
func (f *FakeDriver) FailWrites(err error) {
	f.mu.Lock()
	f.setErr = err
	f.mu.Unlock()
}

// FailEnergize makes every subsequent Set(true) return err (nil clears it).
func (f *FakeDriver) FailEnergize(err error) {
	f.mu.Lock()
	f.highErr = err
	f.mu.Unlock()
}

// FakeBackend hands out pre-registered fake lines.
type FakeBackend struct {
	Inputs  map[int]*FakeLine
	Outputs map[int]*FakeDriver
	Closed  int
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Inputs:  make(map[int]*FakeLine),
		Outputs: make(map[int]*FakeDriver),
	}
}

// Name implements Backend.
func (f *FakeBackend) Name() string {
	return "fake"
}

// OpenInput returns the registered line or an error if none is registered.
func (f *FakeBackend) OpenInput(spec PinSpec) (Line, error) {
	l, ok := f.Inputs[spec.Pin]
	if !ok {
		return nil, fmt.Errorf("request input %s: no such line", spec)
	}
	return l, nil
}

// OpenOutput returns the registered driver or an error if none is registered.
func (f *FakeBackend) OpenOutput(spec PinSpec) (Driver, error) {
	d, ok := f.Outputs[spec.Pin]
	if !ok {
		return nil, fmt.Errorf("request output %s: no such line", spec)
	}
	return d, nil
}

// Close records the call.
func (f *FakeBackend) Close() error {
	f.Closed++
	return nil
}
