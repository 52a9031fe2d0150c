package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/report"
	"github.com/AntonStoeckl/concurrent-transfers-go/internal/telemetry"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/simulator"
)

// trialsReport is the --json output of the trials command.
type trialsReport struct {
	Unsynchronized simulator.TrialSummary `json:"unsynchronized"`
	Synchronized   simulator.TrialSummary `json:"synchronized"`
	Telemetry      *telemetry.Snapshot    `json:"telemetry,omitempty"`
}

func newTrialsCmd(in io.Reader, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trials",
		Short: "Repeat both simulations and report how often the total diverged",
		Long: `Trials repeats the unsynchronized and the synchronized simulation on a ledger that is reset
before every trial and reports how many trials ended with a total that differs from the initial one.

The synchronized trials never diverge. How often the unsynchronized trials diverge depends on the
number of CPUs, the worker count and the scheduler, so the numbers vary between executions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrials(cmd, in, out)
		},
	}

	addSimulatorFlags(cmd)
	cmd.Flags().Int(flagTrials, 0, "Number of trials per mode (default 100)")

	return cmd
}

func runTrials(cmd *cobra.Command, in io.Reader, out io.Writer) (err error) {
	a, err := newApp(cmd, in, out)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(a.close))

	accounts, initialBalance, err := a.ledgerSize()
	if err != nil {
		return err
	}

	sim, err := a.newSimulator()
	if err != nil {
		return a.fail(msgSimulationFailed, err)
	}

	ctx := cmd.Context()

	unsynchronized, err := sim.Trials(ctx, accounts, initialBalance, a.cfg.Trials, false)
	if err != nil {
		return a.fail(msgSimulationFailed, err)
	}

	synchronized, err := sim.Trials(ctx, accounts, initialBalance, a.cfg.Trials, true)
	if err != nil {
		return a.fail(msgSimulationFailed, err)
	}

	snapshot, err := a.snapshot(ctx)
	if err != nil {
		return a.fail(msgReportFailed, err)
	}

	if a.jsonOut {
		err = report.JSON(a.out, trialsReport{
			Unsynchronized: unsynchronized,
			Synchronized:   synchronized,
			Telemetry:      snapshot,
		})
	} else {
		err = multierr.Combine(
			report.Trials(a.out, unsynchronized, synchronized),
			a.printSnapshot(snapshot),
		)
	}

	if err != nil {
		return a.fail(msgReportFailed, err)
	}

	if synchronized.Diverged > 0 {
		return a.fail(msgConservationViolated, synchronized.CheckConservation())
	}

	return nil
}
