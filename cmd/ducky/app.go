package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/opal-lang/ducky/core/config"
	"github.com/opal-lang/ducky/runtime/command"
	"github.com/opal-lang/ducky/runtime/inject"
	"github.com/opal-lang/ducky/runtime/planfmt"
	"github.com/opal-lang/ducky/runtime/planfmt/formatter"
	"github.com/opal-lang/ducky/runtime/script"
	"github.com/opal-lang/ducky/runtime/watch"
)

// options holds the parsed command-line flags.
type options struct {
	verbose      int
	vverbose     bool
	configPath   string
	noColor      bool
	dryRun       bool
	backend      string
	pause        time.Duration
	noFailSafe   bool
	defaultDelay int
	watch        bool
	format       string
}

// app is one invocation of the CLI.
type app struct {
	stdout io.Writer
	stderr io.Writer
	opts   options

	// Overridable in tests.
	port  inject.Port
	sleep command.Sleeper
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// run executes the CLI with args and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	FormatError(a.stderr, err, ShouldUseColor(a.stderr, a.opts.noColor))
	return exitCode(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ducky <script>",
		Short: "Run a ducky-script keystroke macro",
		Long: `Run a ducky-script file, injecting its keystrokes into the focused window.

Each line is one statement: REM, DELAY, DEFAULT_DELAY, STRING, REPEAT, or a
key combination such as "CTRL-ALT DELETE". Moving the pointer into a screen
corner aborts the run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScript(cmd, args[0])
		},
	}

	pf := root.PersistentFlags()
	pf.CountVarP(&a.opts.verbose, "verbose", "v", "Log progress (-v info, -vv debug)")
	pf.BoolVar(&a.opts.vverbose, "vverbose", false, "Log debug output, same as -vv")
	pf.StringVar(&a.opts.configPath, "config", "", "Settings file (default "+config.DefaultPath+")")
	pf.BoolVar(&a.opts.noColor, "no-color", false, "Disable colored output")
	pf.IntVar(&a.opts.defaultDelay, "default-delay", 0, "Initial default delay in milliseconds")

	f := root.Flags()
	f.BoolVar(&a.opts.dryRun, "dry-run", false, "Print the input that would be injected instead of injecting it")
	f.StringVar(&a.opts.backend, "backend", config.BackendXdotool, "Injection backend: xdotool or dry-run")
	f.DurationVar(&a.opts.pause, "pause", 0, "Pause after every injected action")
	f.BoolVar(&a.opts.noFailSafe, "no-failsafe", false, "Do not abort when the pointer is in a screen corner")

	root.AddCommand(a.checkCmd(), a.planCmd())
	return root
}

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Load a script and report problems without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd, args[0])
		},
	}
	cmd.Flags().BoolVar(&a.opts.watch, "watch", false, "Re-check the script every time it changes")
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <script>",
		Short: "Print the resolved steps of a script and its digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.plan(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&a.opts.format, "format", "text", "Output format: text or cbor")
	return cmd
}

// settings merges the settings file with flags that were set explicitly.
func (a *app) settings(cmd *cobra.Command) (config.Settings, error) {
	s, err := config.Load(a.opts.configPath)
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("default-delay") {
		if a.opts.defaultDelay < 0 {
			return config.Settings{}, usageErrorf("--default-delay must not be negative")
		}
		if int64(a.opts.defaultDelay) > command.MaxMillis {
			return config.Settings{}, usageErrorf("--default-delay must not exceed %d", command.MaxMillis)
		}
		s.DefaultDelay = a.opts.defaultDelay
	}
	if flags.Changed("pause") {
		s.Pause = a.opts.pause
	}
	if flags.Changed("no-failsafe") {
		s.FailSafe = !a.opts.noFailSafe
	}
	if flags.Changed("backend") {
		s.Backend = a.opts.backend
	}
	if a.opts.dryRun {
		s.Backend = config.BackendDryRun
	}
	if lvl, ok := verbosityLevel(a.opts.verbose, a.opts.vverbose); ok {
		s.LogLevel = lvl
	}
	return s, nil
}

func (a *app) newPort(s config.Settings) (inject.Port, error) {
	if a.port != nil {
		return a.port, nil
	}
	switch s.Backend {
	case config.BackendDryRun:
		return inject.NewRecorder(a.stdout), nil
	case config.BackendXdotool:
		return inject.NewXdotool(inject.Config{Pause: s.Pause, FailSafe: s.FailSafe}), nil
	default:
		return nil, usageErrorf("unknown backend %q", s.Backend)
	}
}

func (a *app) runScript(cmd *cobra.Command, path string) error {
	s, err := a.settings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(a.stderr, s.LogLevel)

	port, err := a.newPort(s)
	if err != nil {
		return err
	}

	sc, err := script.New(path,
		script.WithLogger(logger),
		script.WithDefaultDelay(s.DefaultDelay),
		script.WithEnv(command.Env{Port: port, Sleep: a.sleep, Logger: logger}),
	)
	if err != nil {
		return err
	}
	return sc.Run(cmd.Context())
}

func (a *app) load(cmd *cobra.Command, path string) (*script.Script, *slog.Logger, error) {
	s, err := a.settings(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(a.stderr, s.LogLevel)

	sc, err := script.New(path, script.WithLogger(logger), script.WithDefaultDelay(s.DefaultDelay))
	if err != nil {
		return nil, nil, err
	}
	return sc, logger, nil
}

func (a *app) check(cmd *cobra.Command, path string) error {
	sc, logger, err := a.load(cmd, path)
	if err != nil {
		return err
	}

	if !a.opts.watch {
		if err := sc.Load(); err != nil {
			return err
		}
		plan := planfmt.FromCommands(path, sc.Commands())
		digest, err := plan.Digest()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(a.stdout, "%s: ok, %d statements, digest %s\n", path, len(plan.Steps), digest.Short())
		return nil
	}

	useColor := ShouldUseColor(a.stdout, a.opts.noColor)
	var last *planfmt.Plan
	w := watch.New(sc, func(r watch.Result) {
		if r.Err != nil {
			FormatError(a.stdout, r.Err, useColor)
			return
		}
		if last == nil {
			_, _ = fmt.Fprintf(a.stdout, "%s: ok, %d statements, digest %s\n", path, len(r.Plan.Steps), r.Digest.Short())
		} else {
			_, _ = fmt.Fprintf(a.stdout, "%s: reloaded, digest %s\n", path, r.Digest.Short())
			_, _ = fmt.Fprint(a.stdout, formatter.FormatDiff(formatter.Diff(last, r.Plan), useColor))
		}
		last = r.Plan
	}, watch.WithLogger(logger))

	err = w.Run(cmd.Context())
	if cmd.Context().Err() != nil {
		return nil
	}
	return err
}

func (a *app) plan(cmd *cobra.Command, path string) error {
	if a.opts.format != "text" && a.opts.format != "cbor" {
		return usageErrorf("unknown format %q (want text or cbor)", a.opts.format)
	}

	sc, _, err := a.load(cmd, path)
	if err != nil {
		return err
	}
	if err := sc.Load(); err != nil {
		return err
	}

	plan := planfmt.FromCommands(path, sc.Commands())
	if a.opts.format == "cbor" {
		data, err := plan.MarshalBinary()
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(data)
		return err
	}

	digest, err := plan.Digest()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.stdout, formatter.Format(plan, digest))
	return err
}
