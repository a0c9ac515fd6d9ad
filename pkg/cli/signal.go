package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/httpeek/httpeek/pkg/duration"
)

// SignalContext returns a context cancelled on SIGINT/SIGTERM. The
// first signal cancels the context so in-flight probes can drain; a
// second signal inside gracePeriod aborts the process immediately
// with ExitInterrupted. A non-positive gracePeriod falls back to
// duration.DrainGrace.
//
// Usage:
//
//	ctx, cancel := cli.SignalContext(duration.ContextShort)
//	defer cancel()
func SignalContext(gracePeriod time.Duration) (context.Context, context.CancelFunc) {
	return signalContextWithNotifier(gracePeriod, nil, nil)
}

// signalContextWithNotifier is the testable core. sigChan, if non-nil,
// replaces the real signal channel; exitFn replaces os.Exit.
func signalContextWithNotifier(
	gracePeriod time.Duration,
	sigChan chan os.Signal,
	exitFn func(int),
) (context.Context, context.CancelFunc) {
	if gracePeriod <= 0 {
		gracePeriod = duration.DrainGrace
	}

	ctx, cancel := context.WithCancel(context.Background())

	ownChannel := sigChan == nil
	if ownChannel {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	}

	if exitFn == nil {
		exitFn = os.Exit
	}

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Interrupt received, draining in-flight probes (Ctrl+C again to abort)...")
			cancel()

			// A second signal aborts without waiting for the drain.
			select {
			case <-sigChan:
				exitFn(ExitInterrupted)
			case <-time.After(gracePeriod):
			}
		case <-ctx.Done():
		}
		if ownChannel {
			signal.Stop(sigChan)
		}
	}()

	return ctx, cancel
}
