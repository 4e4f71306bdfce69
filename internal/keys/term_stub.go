//go:build !linux

package keys

import "os"

// Terminal is unavailable on this platform.
type Terminal struct{}

// Open always returns ErrUnsupported on this platform.
func Open(f *os.File) (*Terminal, error) {
	return nil, ErrUnsupported
}

// Read implements io.Reader.
func (t *Terminal) Read(p []byte) (int, error) {
	return 0, ErrUnsupported
}

// Close is a no-op.
func (t *Terminal) Close() error {
	return nil
}
