package inject

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ActionKind distinguishes recorded actions.
type ActionKind int

const (
	ActionHotkey ActionKind = iota
	ActionType
)

func (k ActionKind) String() string {
	switch k {
	case ActionHotkey:
		return "hotkey"
	case ActionType:
		return "type"
	default:
		return "unknown"
	}
}

// Action is one input operation captured by a Recorder.
type Action struct {
	Kind ActionKind
	Keys []string
	Text string
}

func (a Action) String() string {
	if a.Kind == ActionType {
		return fmt.Sprintf("%s %q", a.Kind, a.Text)
	}
	return fmt.Sprintf("%s %s", a.Kind, strings.Join(a.Keys, "+"))
}

// Recorder is a Port that injects nothing. It keeps every action and, when
// given a writer, echoes each one as a line, which is what --dry-run prints.
type Recorder struct {
	mu      sync.Mutex
	out     io.Writer
	actions []Action

	// Fail, when set, is consulted before recording; a non-nil result is
	// returned instead of recording the action.
	Fail func(Action) error
}

// NewRecorder returns a Recorder echoing to out. out may be nil.
func NewRecorder(out io.Writer) *Recorder {
	return &Recorder{out: out}
}

// Hotkey records a chord.
func (r *Recorder) Hotkey(ctx context.Context, keys ...string) error {
	k := make([]string, len(keys))
	copy(k, keys)
	return r.record(ctx, Action{Kind: ActionHotkey, Keys: k})
}

// Type records literal text.
func (r *Recorder) Type(ctx context.Context, text string) error {
	return r.record(ctx, Action{Kind: ActionType, Text: text})
}

func (r *Recorder) record(ctx context.Context, a Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Fail != nil {
		if err := r.Fail(a); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	if r.out != nil {
		_, _ = fmt.Fprintln(r.out, a.String())
	}
	return nil
}

// Actions returns a copy of everything recorded so far.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Reset discards recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
