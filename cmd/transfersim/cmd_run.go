package main

import (
	"errors"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/report"
	"github.com/AntonStoeckl/concurrent-transfers-go/internal/telemetry"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/simulator"
)

const (
	titleUnsynchronized = "Simulation without synchronization (race condition):"
	titleSynchronized   = "Simulation with synchronization:"
	pauseMessage        = "Press ENTER to exit..."
)

// runReport is the --json output of the run command.
type runReport struct {
	Unsynchronized simulator.RunResult `json:"unsynchronized"`
	Synchronized   simulator.RunResult `json:"synchronized"`
	Telemetry      *telemetry.Snapshot `json:"telemetry,omitempty"`
}

func newRunCmd(in io.Reader, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the unsynchronized and then the synchronized simulation",
		Long: `Run builds a ledger, executes the transfer attempts without synchronization,
then rebuilds the ledger and executes them again holding one lock per transfer.

The command fails if the synchronized run does not conserve the total balance.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulations(cmd, in, out)
		},
	}

	addRunFlags(cmd)

	return cmd
}

func runSimulations(cmd *cobra.Command, in io.Reader, out io.Writer) (err error) {
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

	unsynchronized, err := runOnFreshLedger(cmd, sim, accounts, initialBalance, false)
	if err != nil {
		return a.fail(msgSimulationFailed, err)
	}

	if !a.jsonOut {
		if err := report.Balances(a.out, titleUnsynchronized, unsynchronized); err != nil {
			return a.fail(msgReportFailed, err)
		}
	}

	synchronized, err := runOnFreshLedger(cmd, sim, accounts, initialBalance, true)
	if err != nil {
		return a.fail(msgSimulationFailed, err)
	}

	snapshot, err := a.snapshot(ctx)
	if err != nil {
		return a.fail(msgReportFailed, err)
	}

	if a.jsonOut {
		err = report.JSON(a.out, runReport{
			Unsynchronized: unsynchronized,
			Synchronized:   synchronized,
			Telemetry:      snapshot,
		})
	} else {
		err = multierr.Combine(
			report.Balances(a.out, titleSynchronized, synchronized),
			a.printSnapshot(snapshot),
		)
	}

	if err != nil {
		return a.fail(msgReportFailed, err)
	}

	if err := synchronized.CheckConservation(); err != nil {
		return a.fail(msgConservationViolated, err)
	}

	if pause, _ := cmd.Flags().GetBool(flagPause); pause {
		pterm.Fprintln(a.out, pauseMessage)

		// The results are already reported, a broken input only ends the pause.
		if _, err := a.in.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			a.faultLog.Record(msgReadInputFailed, err)
		}
	}

	return nil
}

// runOnFreshLedger builds a new ledger so the second run does not start from the balances of the first one.
func runOnFreshLedger(
	cmd *cobra.Command,
	sim *simulator.Simulator,
	accounts int,
	initialBalance int,
	synchronized bool,
) (simulator.RunResult, error) {
	l, err := ledger.New(accounts, initialBalance)
	if err != nil {
		return simulator.RunResult{}, err
	}

	return sim.Run(cmd.Context(), l, synchronized)
}
