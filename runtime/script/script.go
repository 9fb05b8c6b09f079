// Package script loads ducky-script files into commands and runs them.
//
// A Script owns its commands and the default-delay cell they share. Loading
// translates every non-blank line up front, so a script with a mistake on its
// last line fails before any input is injected.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/opal-lang/ducky/core/invariant"
	"github.com/opal-lang/ducky/runtime/command"
	"github.com/opal-lang/ducky/runtime/inject"
)

// maxLineLength bounds a single script line. STRING payloads can be long, so
// this is well above bufio's default.
const maxLineLength = 1 << 20

// Script is a loaded (or loadable) ducky-script file.
type Script struct {
	path         string
	defaultDelay int

	commands []*command.Command
	loaded   bool

	// pending collects commands while a load is in progress; it is only
	// committed to commands once every line has parsed.
	pending []*command.Command
	loading bool

	logger *slog.Logger
	env    command.Env
}

var _ command.Script = (*Script)(nil)

// New returns an unloaded script for path. The path must name an existing
// regular file. Without WithEnv the script's actions are recorded, not
// injected.
func New(path string, opts ...Option) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PathError{Path: path, Reason: "does not exist", Err: err}
		}
		return nil, &PathError{Path: path, Reason: "cannot be read", Err: err}
	}
	if info.IsDir() {
		return nil, &PathError{Path: path, Reason: "is a directory, not a file"}
	}
	if !info.Mode().IsRegular() {
		return nil, &PathError{Path: path, Reason: "is not a regular file"}
	}

	s := &Script{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		env:    command.Env{Port: inject.NewRecorder(nil)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the script's file path.
func (s *Script) Path() string {
	return s.path
}

// DefaultDelay returns the current default delay in milliseconds.
func (s *Script) DefaultDelay() int {
	return s.defaultDelay
}

// SetDefaultDelay replaces the default delay. Every command of this script
// sees the new value from its next execution on.
func (s *Script) SetDefaultDelay(ms int) {
	invariant.NonNegative(ms, "default delay")
	s.defaultDelay = ms
}

// Previous returns the nearest command before line. During a load it looks
// only at the commands translated so far.
func (s *Script) Previous(line int) (*command.Command, bool) {
	invariant.Precondition(line >= 0, "line must not be negative, got %d", line)

	list := s.commands
	if s.loading {
		list = s.pending
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Line < line {
			return list[i], true
		}
	}
	return nil, false
}

// Loaded reports whether a load has completed.
func (s *Script) Loaded() bool {
	return s.loaded
}

// Commands returns the loaded commands in line order.
func (s *Script) Commands() []*command.Command {
	out := make([]*command.Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// Load reads and translates the script file. Loading again rebuilds the
// command list from the file; the default delay is left as it is. On error
// nothing from this attempt is kept.
func (s *Script) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return &PathError{Path: s.path, Reason: "cannot be opened", Err: err}
	}
	defer func() { _ = f.Close() }()

	return s.LoadFrom(f)
}

// LoadFrom translates script text read from r. Line numbers are 0-based
// physical lines; blank lines keep their number but produce no command.
func (s *Script) LoadFrom(r io.Reader) error {
	if s.loaded {
		s.logger.Warn("script already loaded, reloading", "path", s.path)
	}
	s.logger.Info("loading script", "path", s.path)

	s.loading = true
	s.pending = nil
	defer func() {
		s.loading = false
		s.pending = nil
	}()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for line := 0; sc.Scan(); line++ {
		raw := sc.Text()
		s.logger.Debug("read line", "line", line, "raw", raw)

		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}

		c, err := command.Parse(text, line, s)
		if err != nil {
			s.logger.Error("unable to parse line", "path", s.path, "line", line, "raw", text, "error", err)
			return err
		}
		s.pending = append(s.pending, c)
	}
	if err := sc.Err(); err != nil {
		s.logger.Error("unable to read script", "path", s.path, "error", err)
		return fmt.Errorf("reading script %s: %w", s.path, err)
	}

	s.commands = s.pending
	s.loaded = true
	s.logger.Info("finished loading", "path", s.path, "commands", len(s.commands))
	return nil
}

// Run executes every command in line order, loading the script first if it
// has not been loaded. It stops at the first failure and returns it.
func (s *Script) Run(ctx context.Context) error {
	invariant.ContextNotNil(ctx, "Script.Run")

	if !s.loaded {
		s.logger.Debug("loading script before run", "path", s.path)
		if err := s.Load(); err != nil {
			return err
		}
	}

	env := s.env
	if env.Logger == nil {
		env.Logger = s.logger
	}

	s.logger.Info("executing script", "path", s.path)
	for _, c := range s.commands {
		s.logger.Info("running line", "line", c.Line, "raw", c.Raw)
		if err := c.Execute(ctx, env); err != nil {
			s.logger.Error("execution failed", "path", s.path, "line", c.Line, "raw", c.Raw, "error", err)
			return err
		}
	}
	s.logger.Info("finished execution", "path", s.path)
	return nil
}
