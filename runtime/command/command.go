// Package command turns single ducky-script lines into executable commands.
//
// Translation happens once: Parse resolves the line's verb (through aliases
// and the key tables in core/keys), validates it and binds its argument, so
// execution never re-reads the source text.
package command

import "fmt"

// Verb is the resolved kind of a statement.
type Verb int

const (
	VerbComment Verb = iota
	VerbDelay
	VerbSetDefaultDelay
	VerbTypeText
	VerbRepeat
	VerbPressKeys
)

func (v Verb) String() string {
	switch v {
	case VerbComment:
		return "comment"
	case VerbDelay:
		return "delay"
	case VerbSetDefaultDelay:
		return "default-delay"
	case VerbTypeText:
		return "type"
	case VerbRepeat:
		return "repeat"
	case VerbPressKeys:
		return "press"
	default:
		return fmt.Sprintf("verb(%d)", int(v))
	}
}

// NoLine is the line number of a command built outside any script.
const NoLine = -1

// Script is what a command needs from the script that owns it: the shared
// default-delay cell and the commands that precede it.
type Script interface {
	// DefaultDelay returns the current default delay in milliseconds.
	DefaultDelay() int

	// SetDefaultDelay replaces the default delay for every later command.
	SetDefaultDelay(ms int)

	// Previous returns the nearest command before line, if there is one.
	Previous(line int) (*Command, bool)
}

// Command is one translated statement.
type Command struct {
	Raw  string // source text, stripped
	Line int    // 0-based physical line, or NoLine
	Verb Verb

	Text   string   // VerbComment, VerbTypeText
	Millis int      // VerbDelay, VerbSetDefaultDelay
	Count  int      // VerbRepeat
	Keys   []string // VerbPressKeys, port key names in press order
	Target *Command // VerbRepeat

	// script is fixed at construction. When nil the command uses its own
	// defaultDelay.
	script       Script
	defaultDelay int

	skipDefaultDelay bool
}

func (c *Command) String() string {
	if c.Line == NoLine {
		return fmt.Sprintf("%q", c.Raw)
	}
	return fmt.Sprintf("line %d: %q", c.Line+1, c.Raw)
}

// EffectiveDefaultDelay is how long, in milliseconds, the command waits
// before acting: the owning script's current default delay, or the command's
// own value when it has no script.
func (c *Command) EffectiveDefaultDelay() int {
	if c.script != nil {
		return c.script.DefaultDelay()
	}
	return c.defaultDelay
}

// SkipsDefaultDelay reports whether the command never waits for the default
// delay. Only comments skip it.
func (c *Command) SkipsDefaultDelay() bool {
	return c.skipDefaultDelay
}

// InScript reports whether the command was built for a script.
func (c *Command) InScript() bool {
	return c.script != nil
}

// noop is the target of a REPEAT with nothing before it.
func noop() *Command {
	return &Command{Line: NoLine, Verb: VerbComment, skipDefaultDelay: true}
}
