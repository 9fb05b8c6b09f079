// Package formatter renders plans for people: listings, single steps and
// diffs between two loads of the same script.
package formatter

import (
	"fmt"
	"strings"

	"github.com/opal-lang/ducky/runtime/command"
	"github.com/opal-lang/ducky/runtime/planfmt"
)

// ANSI colour codes.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text in color when useColor is set.
func Colorize(text, color string, useColor bool) string {
	if !useColor || text == "" {
		return text
	}
	return color + text + ColorReset
}

// Format returns a listing of the plan, one step per line:
//
//	source: payload.txt
//	digest: 3f2a...
//	   1  comment        hi
//	   2  default-delay  100ms
func Format(plan *planfmt.Plan, digest planfmt.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "source: %s\n", plan.Source)
	fmt.Fprintf(&b, "digest: %s\n", digest)
	for i := range plan.Steps {
		st := &plan.Steps[i]
		fmt.Fprintf(&b, "%4d  %-13s  %s\n", st.Line+1, st.Verb, FormatStep(st))
	}
	return b.String()
}

// FormatStep describes what a step does, without its line number.
func FormatStep(st *planfmt.Step) string {
	switch st.Verb {
	case command.VerbComment.String():
		return st.Text
	case command.VerbDelay.String():
		return fmt.Sprintf("wait %dms", st.Millis)
	case command.VerbSetDefaultDelay.String():
		return fmt.Sprintf("default delay %dms", st.Millis)
	case command.VerbTypeText.String():
		return fmt.Sprintf("%q", st.Text)
	case command.VerbPressKeys.String():
		return strings.Join(st.Keys, "+")
	case command.VerbRepeat.String():
		if st.Target == command.NoLine {
			return fmt.Sprintf("nothing x%d", st.Count)
		}
		return fmt.Sprintf("line %d x%d", st.Target+1, st.Count)
	default:
		return st.Raw
	}
}
