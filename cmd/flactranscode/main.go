package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand(os.Stdout, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(pkgerrors.ExitCode(err))
	}
}

func reportError(err error) {
	switch pkgerrors.ExitCode(err) {
	case pkgerrors.ExitUsage:
		fmt.Fprintf(os.Stderr, "error: %v\nRun 'flactranscode --help' for usage.\n", err)
	case pkgerrors.ExitJobsFailed:
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			return
		}
		fmt.Fprintf(os.Stderr, "%d file(s) failed\n", len(multierr.Errors(err)))
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
