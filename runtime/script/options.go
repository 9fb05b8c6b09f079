package script

import (
	"log/slog"

	"github.com/opal-lang/ducky/runtime/command"
)

// Option configures a Script.
type Option func(*Script)

// WithLogger sets the logger load and run events go to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Script) {
		s.logger = l
	}
}

// WithDefaultDelay sets the initial default delay in milliseconds.
func WithDefaultDelay(ms int) Option {
	return func(s *Script) {
		s.defaultDelay = ms
	}
}

// WithEnv sets the port, sleeper and logger commands execute against. The
// script's logger is used when env has none, and a nil port keeps the
// recording default.
func WithEnv(env command.Env) Option {
	return func(s *Script) {
		if env.Port == nil {
			env.Port = s.env.Port
		}
		s.env = env
	}
}
