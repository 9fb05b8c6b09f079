// Package watch reloads a script whenever its file changes and reports the
// resulting plan.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opal-lang/ducky/core/invariant"
	"github.com/opal-lang/ducky/runtime/planfmt"
	"github.com/opal-lang/ducky/runtime/script"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Result is the outcome of one load.
type Result struct {
	Plan   *planfmt.Plan // nil when Err is set
	Digest planfmt.Digest
	Err    error
}

// Handler receives every load result, starting with the initial load.
type Handler func(Result)

// Watcher reloads a script on change.
type Watcher struct {
	script   *script.Script
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before reloading.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New returns a watcher for s.
func New(s *script.Script, handler Handler, opts ...Option) *Watcher {
	invariant.NotNil(s, "script")
	invariant.NotNil(handler, "handler")

	w := &Watcher{
		script:   s,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run loads the script once, then again after every change, until ctx is
// done. It watches the parent directory so editors that replace the file
// by renaming keep being followed.
func (w *Watcher) Run(ctx context.Context) error {
	invariant.ContextNotNil(ctx, "Watcher.Run")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	path := filepath.Clean(w.script.Path())
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	w.logger.Info("watching script", "path", path)

	w.reload()

	// Idle until the first change. Stop leaves nothing in timer.C.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !relevant(ev.Op) {
				continue
			}
			w.logger.Debug("script changed", "path", path, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "path", path, "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	if err := w.script.Load(); err != nil {
		w.logger.Warn("reload failed", "path", w.script.Path(), "error", err)
		w.handler(Result{Err: err})
		return
	}

	plan := planfmt.FromCommands(w.script.Path(), w.script.Commands())
	digest, err := plan.Digest()
	if err != nil {
		w.handler(Result{Err: err})
		return
	}
	w.logger.Info("reloaded script", "path", w.script.Path(), "digest", digest.Short())
	w.handler(Result{Plan: plan, Digest: digest})
}
