//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals are the signals which cancel a running simulation.
// On Unix systems, this includes both SIGINT and SIGTERM.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}
