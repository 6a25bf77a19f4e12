package cliapp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
)

// Lifecycle is a long-running service started by a CLI command.
type Lifecycle interface {
	// Start starts a service. A service only fully starts once. Subsequent starts may return an error.
	// A context is provided to end the service during setup.
	// The caller should call Stop to clean up after failing to start.
	Start(ctx context.Context) error
	// Stop stops a service gracefully.
	// The provided ctx can force an accelerated shutdown,
	// but the node still has to completely stop.
	Stop(ctx context.Context) error
	// Stopped determines if the service was already fully stopped.
	Stopped() bool
}

// LifecycleAction instantiates a Lifecycle based on a CLI context.
// With the close argument a lifecycle may choose to shut itself down.
type LifecycleAction func(ctx *cli.Context, close context.CancelCauseFunc) (Lifecycle, error)

var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

const stopTimeout = 10 * time.Second

// WithInterruptSignals returns a context that is canceled on SIGINT or SIGTERM.
func WithInterruptSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, interruptSignals...)
}

// LifecycleCmd turns a LifecycleAction into an CLI action,
// by instrumenting it with CLI context and signal based termination.
// The lifecycle is stopped when the app context is canceled,
// or when the lifecycle closes itself.
func LifecycleCmd(fn LifecycleAction) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		hostCtx := ctx.Context
		appCtx, appCancel := context.WithCancelCause(hostCtx)
		defer appCancel(nil)
		ctx.Context = appCtx

		appLifecycle, err := fn(ctx, appCancel)
		if err != nil {
			return errors.Join(
				fmt.Errorf("failed to setup: %w", err),
				context.Cause(appCtx),
			)
		}

		if err := appLifecycle.Start(appCtx); err != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
			defer stopCancel()
			return errors.Join(
				fmt.Errorf("failed to start: %w", err),
				appLifecycle.Stop(stopCtx),
			)
		}

		<-appCtx.Done()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		stopErr := appLifecycle.Stop(stopCtx)
		cause := context.Cause(appCtx)
		if errors.Is(cause, context.Canceled) {
			// canceled by interrupt: a clean exit
			cause = nil
		}
		return errors.Join(stopErr, cause)
	}
}
