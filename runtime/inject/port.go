// Package inject is the boundary between the interpreter and the host's
// keyboard. Commands never touch the operating system directly; they call a
// Port, which either drives real input (Xdotool) or records what would have
// been sent (Recorder).
package inject

import (
	"context"
	"errors"
	"time"
)

// Port performs keyboard input on behalf of executing commands.
type Port interface {
	// Hotkey presses keys together as one chord, in order, and releases them
	// in reverse order. A single key is a plain key press.
	Hotkey(ctx context.Context, keys ...string) error

	// Type types text literally, character by character.
	Type(ctx context.Context, text string) error
}

// ErrFailSafe is returned when the pointer sits in a screen corner while the
// fail-safe is enabled. Parking the mouse in a corner is how an operator
// aborts a runaway script.
var ErrFailSafe = errors.New("fail-safe triggered: pointer moved to a screen corner")

// Config is the process-wide injection setup, applied once before any
// command runs.
type Config struct {
	// Pause is slept after every injected action.
	Pause time.Duration

	// FailSafe enables the screen-corner abort check before every action.
	FailSafe bool
}

// DefaultConfig returns no pause with the fail-safe enabled.
func DefaultConfig() Config {
	return Config{Pause: 0, FailSafe: true}
}

// Sleep blocks for d or until ctx is done. Non-positive durations return
// immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
