package command

import (
	"fmt"
	"strings"
)

// ParseError reports a line that could not be translated.
type ParseError struct {
	Line        int    // 0-based, or NoLine
	Raw         string // offending line
	Token       string // offending token, when one can be singled out
	Message     string
	Suggestions []string
	Err         error // underlying conversion error, if any
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line != NoLine {
		fmt.Fprintf(&b, "line %d: ", e.Line+1)
	}
	b.WriteString(e.Message)
	if e.Token != "" {
		fmt.Fprintf(&b, " %q", e.Token)
	}
	fmt.Fprintf(&b, " in %q", e.Raw)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExecutionError reports a command that failed while running.
type ExecutionError struct {
	Line int
	Raw  string
	Err  error
}

func (e *ExecutionError) Error() string {
	if e.Line == NoLine {
		return fmt.Sprintf("executing %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("line %d: executing %q: %v", e.Line+1, e.Raw, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
