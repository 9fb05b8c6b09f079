package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/opal-lang/ducky/core/invariant"
	"github.com/opal-lang/ducky/runtime/inject"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Env is what commands act on.
type Env struct {
	Port   inject.Port
	Sleep  Sleeper      // nil means inject.Sleep
	Logger *slog.Logger // nil discards
}

func (e Env) sleep(ctx context.Context, ms int) error {
	d := time.Duration(ms) * time.Millisecond
	if e.Sleep == nil {
		return inject.Sleep(ctx, d)
	}
	return e.Sleep(ctx, d)
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

// Execute runs the command: the default-delay wait (unless the command skips
// it), then the statement's action. Running a command again repeats every
// side effect, the wait included.
func (c *Command) Execute(ctx context.Context, env Env) error {
	return c.execute(ctx, env, false)
}

// execute runs the command. suppressDelay skips the default-delay wait for
// this invocation only; REPEAT uses it so the wait is not paid per iteration.
func (c *Command) execute(ctx context.Context, env Env, suppressDelay bool) error {
	invariant.ContextNotNil(ctx, "Command.Execute")
	log := env.logger()
	log.Debug("executing", "line", c.Line, "raw", c.Raw, "verb", c.Verb.String())

	if !suppressDelay && !c.skipDefaultDelay {
		ms := c.EffectiveDefaultDelay()
		log.Debug("default delay", "line", c.Line, "ms", ms)
		if err := env.sleep(ctx, ms); err != nil {
			return c.wrap(err)
		}
	}

	switch c.Verb {
	case VerbComment:
		return nil

	case VerbDelay:
		return c.wrap(env.sleep(ctx, c.Millis))

	case VerbSetDefaultDelay:
		invariant.NotNil(c.script, "script")
		c.script.SetDefaultDelay(c.Millis)
		return nil

	case VerbTypeText:
		invariant.NotNil(env.Port, "port")
		return c.wrap(env.Port.Type(ctx, c.Text))

	case VerbPressKeys:
		invariant.NotNil(env.Port, "port")
		return c.wrap(env.Port.Hotkey(ctx, c.Keys...))

	case VerbRepeat:
		invariant.NotNil(c.Target, "repeat target")
		for i := 0; i < c.Count; i++ {
			if err := c.Target.execute(ctx, env, true); err != nil {
				return c.wrap(err)
			}
		}
		return nil

	default:
		invariant.Invariant(false, "unhandled verb %s", c.Verb)
		return nil
	}
}

// wrap attributes err to this command. Errors already attributed to a
// command (a repeated statement failing) pass through untouched.
func (c *Command) wrap(err error) error {
	if err == nil {
		return nil
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return err
	}
	return &ExecutionError{Line: c.Line, Raw: c.Raw, Err: err}
}
