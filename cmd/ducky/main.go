// Command ducky runs ducky-script files: keystroke macros that type text,
// press key combinations and wait between steps.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	ExitSuccess        = 0
	ExitUsage          = 1
	ExitIOError        = 2
	ExitParseError     = 3
	ExitExecutionError = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
