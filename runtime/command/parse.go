package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/opal-lang/ducky/core/invariant"
	"github.com/opal-lang/ducky/core/keys"
)

// Parse translates one script line into a command owned by sc.
//
// line is the 0-based physical line number. A nil sc builds a standalone
// command (see ParseStandalone); DEFAULT_DELAY and REPEAT need a script and
// fail to parse without one.
func Parse(raw string, line int, sc Script) (*Command, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &ParseError{Line: line, Raw: raw, Message: "empty statement"}
	}

	token, rest, _ := strings.Cut(text, " ")
	if !keys.IsRecognized(token) {
		return nil, &ParseError{
			Line:        line,
			Raw:         text,
			Token:       token,
			Message:     "unrecognized verb or key",
			Suggestions: keys.Suggest(token),
		}
	}

	verb := token
	if keys.IsAlias(verb) {
		target, err := keys.ResolveAlias(verb)
		invariant.ExpectNoError(err, "resolving a known alias")
		verb = target
	}

	c := &Command{Raw: text, Line: line, script: sc}
	fail := func(msg string, err error) (*Command, error) {
		return nil, &ParseError{Line: line, Raw: text, Token: token, Message: msg, Err: err}
	}

	switch verb {
	case keys.VerbRem:
		c.Verb = VerbComment
		c.Text = rest
		c.skipDefaultDelay = true

	case keys.VerbDelay:
		ms, err := parseCount(rest)
		if err != nil {
			return fail("invalid milliseconds for", err)
		}
		c.Verb = VerbDelay
		c.Millis = ms

	case keys.VerbDefaultDelay:
		if sc == nil {
			return fail("script-only statement", nil)
		}
		ms, err := parseCount(rest)
		if err != nil {
			return fail("invalid milliseconds for", err)
		}
		c.Verb = VerbSetDefaultDelay
		c.Millis = ms

	case keys.VerbString:
		c.Verb = VerbTypeText
		c.Text = rest

	case keys.VerbRepeat:
		if sc == nil {
			return fail("script-only statement", nil)
		}
		n, err := parseCount(rest)
		if err != nil {
			return fail("invalid count for", err)
		}
		target, ok := sc.Previous(line)
		if !ok {
			target = noop()
		}
		c.Verb = VerbRepeat
		c.Count = n
		c.Target = target

	default:
		for _, tok := range strings.Fields(text) {
			names := keys.Translate(tok)
			if !keys.Resolved(names) {
				return nil, &ParseError{
					Line:        line,
					Raw:         text,
					Token:       tok,
					Message:     "unrecognized key",
					Suggestions: keys.Suggest(tok),
				}
			}
			c.Keys = append(c.Keys, names...)
		}
		c.Verb = VerbPressKeys
	}

	return c, nil
}

// ParseStandalone translates a line outside any script. The command waits
// defaultDelay milliseconds before acting.
func ParseStandalone(raw string, defaultDelay int) (*Command, error) {
	c, err := Parse(raw, NoLine, nil)
	if err != nil {
		return nil, err
	}
	c.defaultDelay = defaultDelay
	return c, nil
}

// MaxMillis is the longest delay, in milliseconds, that fits a time.Duration.
const MaxMillis int64 = math.MaxInt64 / int64(time.Millisecond)

var (
	errNegative = errors.New("must not be negative")
	errTooLarge = fmt.Errorf("must not exceed %d", MaxMillis)
)

// parseCount parses a non-negative decimal integer argument no larger than
// MaxMillis.
func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegative
	}
	if int64(n) > MaxMillis {
		return 0, errTooLarge
	}
	return n, nil
}
