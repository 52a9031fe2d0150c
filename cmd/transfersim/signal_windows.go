//go:build windows

package main

import (
	"os"
)

// shutdownSignals are the signals which cancel a running simulation.
// On Windows only os.Interrupt is supported.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
