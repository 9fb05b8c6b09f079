package invariant_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/opal-lang/ducky/core/invariant"
)

// expectPanic runs fn and returns the panic message, failing the test if fn
// does not panic.
func expectPanic(t *testing.T, fn func()) (msg string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		msg = fmt.Sprintf("%v", r)
	}()
	fn()
	return ""
}

func TestPreconditionPass(t *testing.T) {
	invariant.Precondition(true, "this should pass")
	invariant.Precondition(len("REM") == 3, "verb length")
}

func TestPreconditionFail(t *testing.T) {
	msg := expectPanic(t, func() {
		invariant.Precondition(false, "line must not be negative, got %d", -4)
	})
	if !strings.Contains(msg, "PRECONDITION VIOLATION") {
		t.Errorf("expected PRECONDITION VIOLATION, got: %s", msg)
	}
	if !strings.Contains(msg, "got -4") {
		t.Errorf("expected formatted message, got: %s", msg)
	}
	if !strings.Contains(msg, "at ") {
		t.Errorf("expected call site context, got: %s", msg)
	}
}

func TestInvariantFail(t *testing.T) {
	msg := expectPanic(t, func() {
		invariant.Invariant(false, "alias %q targets another alias", "ESC")
	})
	if !strings.Contains(msg, "INVARIANT VIOLATION") {
		t.Errorf("expected INVARIANT VIOLATION, got: %s", msg)
	}
}

func TestNotNil(t *testing.T) {
	invariant.NotNil(&struct{}{}, "value")

	var typed *strings.Builder
	tests := []struct {
		name  string
		value any
	}{
		{"untyped nil", nil},
		{"typed nil pointer", typed},
		{"nil func", (func())(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := expectPanic(t, func() { invariant.NotNil(tt.value, "port") })
			if !strings.Contains(msg, "port must not be nil") {
				t.Errorf("unexpected message: %s", msg)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	invariant.NonNegative(0, "count")
	invariant.NonNegative(10, "count")

	msg := expectPanic(t, func() { invariant.NonNegative(-1, "count") })
	if !strings.Contains(msg, "count must not be negative, got -1") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestExpectNoError(t *testing.T) {
	invariant.ExpectNoError(nil, "schema compile")

	msg := expectPanic(t, func() { invariant.ExpectNoError(errors.New("boom"), "schema compile") })
	if !strings.Contains(msg, "POSTCONDITION VIOLATION") || !strings.Contains(msg, "boom") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestContextNotNil(t *testing.T) {
	invariant.ContextNotNil(context.Background(), "Run")

	//nolint:staticcheck // deliberately passing a nil context
	msg := expectPanic(t, func() { invariant.ContextNotNil(nil, "Run") })
	if !strings.Contains(msg, "Run: context must not be nil") {
		t.Errorf("unexpected message: %s", msg)
	}
}
