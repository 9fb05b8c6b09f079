package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opal-lang/ducky/core/config"
	"github.com/opal-lang/ducky/runtime/command"
	"github.com/opal-lang/ducky/runtime/inject"
	"github.com/opal-lang/ducky/runtime/script"
)

// UsageError is a bad flag value or argument combination.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var (
		pathErr  *script.PathError
		parseErr *command.ParseError
		execErr  *command.ExecutionError
		cfgErr   *config.Error
		usageErr *UsageError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &parseErr):
		return ExitParseError
	case errors.As(err, &execErr):
		return ExitExecutionError
	case errors.As(err, &pathErr):
		return ExitIOError
	case errors.As(err, &cfgErr), errors.As(err, &usageErr):
		return ExitUsage
	default:
		// cobra reports bad arguments and unknown flags as plain errors.
		return ExitUsage
	}
}

// FormatError writes err for a person to read.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var (
		pathErr  *script.PathError
		parseErr *command.ParseError
		execErr  *command.ExecutionError
		cfgErr   *config.Error
	)
	switch {
	case errors.As(err, &parseErr):
		formatParseError(w, parseErr, useColor)
	case errors.As(err, &execErr):
		formatExecutionError(w, execErr, useColor)
	case errors.As(err, &pathErr):
		printError(w, err.Error(), useColor)
		printHint(w, "pass the path of a ducky-script file", useColor)
	case errors.As(err, &cfgErr):
		printError(w, err.Error(), useColor)
		printHint(w, "fix the settings file or point --config at another one", useColor)
	default:
		printError(w, err.Error(), useColor)
	}
}

func formatParseError(w io.Writer, err *command.ParseError, useColor bool) {
	var msg strings.Builder
	if err.Line != command.NoLine {
		fmt.Fprintf(&msg, "line %d: ", err.Line+1)
	}
	msg.WriteString(err.Message)
	if err.Token != "" {
		fmt.Fprintf(&msg, " %q", err.Token)
	}
	if err.Err != nil {
		fmt.Fprintf(&msg, ": %v", err.Err)
	}
	printError(w, msg.String(), useColor)
	printSource(w, err.Line, err.Raw, useColor)

	if len(err.Suggestions) > 0 {
		printHint(w, "did you mean "+strings.Join(err.Suggestions, ", ")+"?", useColor)
	}
}

func formatExecutionError(w io.Writer, err *command.ExecutionError, useColor bool) {
	msg := fmt.Sprintf("%v", err.Err)
	if err.Line != command.NoLine {
		msg = fmt.Sprintf("line %d: %v", err.Line+1, err.Err)
	}
	printError(w, msg, useColor)
	printSource(w, err.Line, err.Raw, useColor)

	if errors.Is(err, inject.ErrFailSafe) {
		printHint(w, "the pointer was in a screen corner; move it away or pass --no-failsafe", useColor)
	}
}

func printError(w io.Writer, msg string, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), msg)
}

func printSource(w io.Writer, line int, raw string, useColor bool) {
	if raw == "" {
		return
	}
	prefix := "    | "
	if line != command.NoLine {
		prefix = fmt.Sprintf("%4d | ", line+1)
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize(prefix, ColorGray, useColor), raw)
}

func printHint(w io.Writer, hint string, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), hint)
}
