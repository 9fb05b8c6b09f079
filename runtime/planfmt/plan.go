// Package planfmt describes a loaded script as a plan: a flat, serializable
// list of resolved steps. Plans are what `ducky plan` prints and what
// `ducky check --watch` compares between reloads.
package planfmt

import (
	"github.com/opal-lang/ducky/runtime/command"
)

// Version is the canonical encoding version. Bump it when Step changes shape.
const Version uint8 = 1

// Plan is the resolved form of a script.
type Plan struct {
	// Source names where the plan came from. It is metadata and does not
	// take part in the digest, so the same script at two paths hashes equal.
	Source string

	Steps []Step
}

// Step is one resolved command.
type Step struct {
	Line      int      // 0-based source line
	Verb      string   // command.Verb name
	Raw       string   // stripped source text
	Text      string   // comment or typed text
	Millis    int      // delay values
	Count     int      // repeat count
	Keys      []string // port key names
	Target    int      // line of the repeated step, command.NoLine when none
	SkipDelay bool     // never waits for the default delay
}

// FromCommands builds a plan from translated commands.
func FromCommands(source string, cmds []*command.Command) *Plan {
	p := &Plan{Source: source, Steps: make([]Step, 0, len(cmds))}
	for _, c := range cmds {
		st := Step{
			Line:      c.Line,
			Verb:      c.Verb.String(),
			Raw:       c.Raw,
			Text:      c.Text,
			Millis:    c.Millis,
			Count:     c.Count,
			Target:    command.NoLine,
			SkipDelay: c.SkipsDefaultDelay(),
		}
		if len(c.Keys) > 0 {
			st.Keys = append([]string(nil), c.Keys...)
		}
		if c.Target != nil {
			st.Target = c.Target.Line
		}
		p.Steps = append(p.Steps, st)
	}
	return p
}
