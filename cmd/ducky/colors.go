package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/opal-lang/ducky/runtime/planfmt/formatter"
)

const (
	ColorReset  = formatter.ColorReset
	ColorRed    = formatter.ColorRed
	ColorYellow = formatter.ColorYellow
	ColorGray   = formatter.ColorGray
)

// Colorize wraps text in ANSI color codes if color is enabled.
func Colorize(text, color string, useColor bool) string {
	return formatter.Colorize(text, color, useColor)
}

// ShouldUseColor reports whether output to w should be colored. It respects
// --no-color and NO_COLOR, and only colors terminals.
func ShouldUseColor(w io.Writer, noColorFlag bool) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
