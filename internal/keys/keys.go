// Package keys reads single key presses from a terminal and turns them into
// manual control actions for bench testing without hardware.
package keys

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/sweeney/pinball-cabinet/internal/game"
)

// ErrUnsupported is returned by Open on platforms without termios.
var ErrUnsupported = errors.New("keyboard input not supported on this platform")

// Help lists the key bindings.
const Help = "keys: t=target 1=bumper-1 2=bumper-2 l=letter b=drain r=reset"

var bindings = map[byte]game.Action{
	't': game.ActionTarget,
	'1': game.ActionBumper1,
	'2': game.ActionBumper2,
	'l': game.ActionLetter,
	'b': game.ActionDrain,
	'r': game.ActionReset,
}

// Map returns the action bound to key. Letters are case-insensitive.
func Map(key byte) (game.Action, bool) {
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}
	a, ok := bindings[key]
	return a, ok
}

// Run reads keys from r and queues the bound actions until r is exhausted or
// ctx is cancelled. Unbound keys are ignored. When the queue is full the key
// is dropped so a held key cannot back up the main loop.
func Run(ctx context.Context, r io.Reader, actions chan<- game.Action) error {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if ctx.Err() != nil {
				return nil
			}
			a, ok := Map(b)
			if !ok {
				continue
			}
			select {
			case actions <- a:
			default:
				log.Printf("keys: queue full, dropped %s", a)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
