// Command transfersim runs random fund transfers on a shared in-memory ledger, first without and then with
// synchronization, and shows how unsynchronized updates lose money while the synchronized run conserves it.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)

	err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx)
	stop()

	if err != nil {
		pterm.Fprintln(os.Stderr, pterm.Error.Sprint(err))
		os.Exit(1)
	}
}
