//go:build linux

package keys

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Terminal puts a tty into cbreak mode so key presses arrive unbuffered and
// restores the saved attributes on Close.
type Terminal struct {
	file    *os.File
	canAttr unix.Termios
}

// Open switches f into cbreak mode.
func Open(f *os.File) (*Terminal, error) {
	t := &Terminal{file: f}
	if err := termios.Tcgetattr(f.Fd(), &t.canAttr); err != nil {
		return nil, fmt.Errorf("keys: read terminal attributes: %w", err)
	}

	cbreak := t.canAttr
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(f.Fd(), termios.TCIFLUSH, &cbreak); err != nil {
		return nil, fmt.Errorf("keys: set cbreak mode: %w", err)
	}
	return t, nil
}

// Read implements io.Reader.
func (t *Terminal) Read(p []byte) (int, error) {
	return t.file.Read(p)
}

// Close restores canonical mode. The underlying file is left open.
func (t *Terminal) Close() error {
	return termios.Tcsetattr(t.file.Fd(), termios.TCIFLUSH, &t.canAttr)
}
