package main

import (
	"io"
	"log/slog"
)

// verbosityLevel maps -v/-vv/--vverbose to a log level. ok is false when no
// verbosity flag was given.
func verbosityLevel(verbose int, vverbose bool) (slog.Level, bool) {
	switch {
	case vverbose || verbose >= 2:
		return slog.LevelDebug, true
	case verbose == 1:
		return slog.LevelInfo, true
	default:
		return 0, false
	}
}

// newLogger returns the CLI logger: text on w, no timestamps.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}
