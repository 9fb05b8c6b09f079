package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/ducky/core/keys"
	"github.com/opal-lang/ducky/runtime/command"
	"github.com/opal-lang/ducky/runtime/inject"
	"github.com/opal-lang/ducky/runtime/planfmt"
	"github.com/opal-lang/ducky/runtime/script"
)

type testApp struct {
	*app
	out    *bytes.Buffer
	errOut *bytes.Buffer
	sleeps []time.Duration
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	homedir.Reset()
	t.Setenv("NO_COLOR", "1")

	ta := &testApp{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	ta.app = newApp(ta.out, ta.errOut)
	ta.sleep = func(ctx context.Context, d time.Duration) error {
		ta.sleeps = append(ta.sleeps, d)
		return ctx.Err()
	}
	return ta
}

func (ta *testApp) exec(args ...string) int {
	return ta.run(context.Background(), args)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDryRun(t *testing.T) {
	ta := newTestApp(t)
	path := writeFile(t, "payload.txt", "REM hi\nDEFAULT_DELAY 100\nSTRING hello\nDELAY 50\nGUI r\n")

	code := ta.exec("--dry-run", path)
	require.Equal(t, ExitSuccess, code, ta.errOut.String())

	assert.Equal(t, "type \"hello\"\nhotkey "+keys.GUIKey()+"+r\n", ta.out.String())
	ms := time.Millisecond
	assert.Equal(t, []time.Duration{0, 100 * ms, 100 * ms, 50 * ms, 100 * ms}, ta.sleeps)
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want int
		msg  string
	}{
		{
			name: "no arguments",
			args: func(*testing.T) []string { return nil },
			want: ExitUsage,
		},
		{
			name: "missing file",
			args: func(*testing.T) []string { return []string{"--dry-run", filepath.Join(dir, "nope.txt")} },
			want: ExitIOError,
			msg:  "does not exist",
		},
		{
			name: "directory",
			args: func(*testing.T) []string { return []string{"--dry-run", dir} },
			want: ExitIOError,
			msg:  "is a directory",
		},
		{
			name: "parse error",
			args: func(t *testing.T) []string {
				return []string{"--dry-run", writeFile(t, "bad.txt", "STRING ok\nSTRNG oops\n")}
			},
			want: ExitParseError,
			msg:  "Hint: did you mean STRING",
		},
		{
			name: "unknown backend",
			args: func(t *testing.T) []string {
				return []string{"--backend", "uinput", writeFile(t, "ok.txt", "ENTER\n")}
			},
			want: ExitUsage,
			msg:  "unknown backend",
		},
		{
			name: "negative default delay",
			args: func(t *testing.T) []string {
				return []string{"--dry-run", "--default-delay", "-5", writeFile(t, "ok.txt", "ENTER\n")}
			},
			want: ExitUsage,
		},
		{
			name: "default delay overflows duration",
			args: func(t *testing.T) []string {
				return []string{"--dry-run", "--default-delay", "10000000000000", writeFile(t, "ok.txt", "ENTER\n")}
			},
			want: ExitUsage,
			msg:  "must not exceed",
		},
		{
			name: "invalid config",
			args: func(t *testing.T) []string {
				cfg := writeFile(t, "config.yaml", "speed: fast\n")
				return []string{"--dry-run", "--config", cfg, writeFile(t, "ok.txt", "ENTER\n")}
			},
			want: ExitUsage,
			msg:  "invalid settings",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			code := ta.exec(tt.args(t)...)
			assert.Equal(t, tt.want, code, ta.errOut.String())
			if tt.msg != "" {
				assert.Contains(t, ta.errOut.String(), tt.msg)
			}
		})
	}
}

func TestExecutionFailure(t *testing.T) {
	ta := newTestApp(t)
	rec := inject.NewRecorder(nil)
	rec.Fail = func(inject.Action) error { return inject.ErrFailSafe }
	ta.port = rec

	path := writeFile(t, "payload.txt", "REM start\nSTRING hello\n")
	code := ta.exec(path)

	assert.Equal(t, ExitExecutionError, code)
	errOut := ta.errOut.String()
	assert.Contains(t, errOut, "Error: line 2:")
	assert.Contains(t, errOut, "   2 | STRING hello")
	assert.Contains(t, errOut, "--no-failsafe")
}

func TestConfigSuppliesDefaultDelay(t *testing.T) {
	ta := newTestApp(t)
	cfg := writeFile(t, "config.yaml", "default_delay: 30\nbackend: dry-run\n")
	path := writeFile(t, "payload.txt", "ENTER\n")

	require.Equal(t, ExitSuccess, ta.exec("--config", cfg, path), ta.errOut.String())
	assert.Equal(t, []time.Duration{30 * time.Millisecond}, ta.sleeps)
	assert.Equal(t, "hotkey enter\n", ta.out.String())

	ta = newTestApp(t)
	require.Equal(t, ExitSuccess, ta.exec("--config", cfg, "--default-delay", "5", path))
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, ta.sleeps, "flags override the settings file")
}

func TestVerboseLogging(t *testing.T) {
	path := writeFile(t, "payload.txt", "STRING hi\n")

	ta := newTestApp(t)
	require.Equal(t, ExitSuccess, ta.exec("--dry-run", path))
	assert.Empty(t, ta.errOut.String())

	ta = newTestApp(t)
	require.Equal(t, ExitSuccess, ta.exec("--dry-run", "-v", path))
	assert.Contains(t, ta.errOut.String(), "running line")
	assert.NotContains(t, ta.errOut.String(), "read line")

	for _, flag := range []string{"-vv", "--vverbose"} {
		ta = newTestApp(t)
		require.Equal(t, ExitSuccess, ta.exec("--dry-run", flag, path))
		assert.Contains(t, ta.errOut.String(), "read line", flag)
		assert.NotContains(t, ta.errOut.String(), "time=", flag)
	}
}

func TestVerbosityLevel(t *testing.T) {
	_, ok := verbosityLevel(0, false)
	assert.False(t, ok)

	lvl, _ := verbosityLevel(1, false)
	assert.Equal(t, slog.LevelInfo, lvl)
	lvl, _ = verbosityLevel(2, false)
	assert.Equal(t, slog.LevelDebug, lvl)
	lvl, _ = verbosityLevel(0, true)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestCheck(t *testing.T) {
	ta := newTestApp(t)
	path := writeFile(t, "payload.txt", "STRING hi\nENTER\n")

	require.Equal(t, ExitSuccess, ta.exec("check", path), ta.errOut.String())
	assert.Contains(t, ta.out.String(), "ok, 2 statements, digest ")

	ta = newTestApp(t)
	bad := writeFile(t, "bad.txt", "ENTER\nREPEAT x\n")
	assert.Equal(t, ExitParseError, ta.exec("check", bad))
	assert.Contains(t, ta.errOut.String(), "line 2: invalid count for")
}

func TestCheckWatchStopsOnCancel(t *testing.T) {
	ta := newTestApp(t)
	path := writeFile(t, "payload.txt", "ENTER\n")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	code := ta.run(ctx, []string{"check", "--watch", path})

	assert.Equal(t, ExitSuccess, code, ta.errOut.String())
	assert.Contains(t, ta.out.String(), "ok, 1 statements")
}

func TestPlan(t *testing.T) {
	path := writeFile(t, "payload.txt", "REM hi\nCTRL-ALT DELETE\nREPEAT 2\n")

	ta := newTestApp(t)
	require.Equal(t, ExitSuccess, ta.exec("plan", path), ta.errOut.String())
	lines := strings.Split(ta.out.String(), "\n")
	assert.Equal(t, "source: "+path, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "digest: "))
	assert.Equal(t, "   2  press          ctrl+alt+delete", lines[3])
	assert.Equal(t, "   3  repeat         line 2 x2", lines[4])

	ta = newTestApp(t)
	require.Equal(t, ExitSuccess, ta.exec("plan", "--format", "cbor", path))
	plan, err := planfmt.Unmarshal(ta.out.Bytes())
	require.NoError(t, err)
	require.Len(t, plan.Steps, 3)
	assert.Equal(t, []string{"ctrl", "alt", "delete"}, plan.Steps[1].Keys)

	ta = newTestApp(t)
	assert.Equal(t, ExitUsage, ta.exec("plan", "--format", "xml", path))
}

func TestFormatError(t *testing.T) {
	var buf bytes.Buffer
	FormatError(&buf, &script.PathError{Path: "x.txt", Reason: "does not exist"}, false)
	assert.Equal(t, "Error: script x.txt: does not exist\nHint: pass the path of a ducky-script file\n", buf.String())

	buf.Reset()
	FormatError(&buf, &command.ParseError{Line: 0, Raw: "QUACK", Token: "QUACK", Message: "unrecognized verb or key"}, true)
	assert.Contains(t, buf.String(), ColorRed+"Error: "+ColorReset+`line 1: unrecognized verb or key "QUACK"`)

	buf.Reset()
	FormatError(&buf, errors.New("plain"), false)
	assert.Equal(t, "Error: plain\n", buf.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitParseError, exitCode(&command.ParseError{Line: command.NoLine}))
	assert.Equal(t, ExitExecutionError, exitCode(&command.ExecutionError{Err: context.Canceled}))
	assert.Equal(t, ExitIOError, exitCode(&script.PathError{}))
	assert.Equal(t, ExitUsage, exitCode(errors.New("accepts 1 arg(s), received 0")))
}
