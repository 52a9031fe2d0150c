package main

import (
	"io"

	"github.com/spf13/cobra"
)

const (
	flagConfig       = "config"
	flagJSON         = "json"
	flagMetrics      = "metrics"
	flagAccounts     = "accounts"
	flagBalance      = "balance"
	flagTransactions = "transactions"
	flagWorkers      = "workers"
	flagSeed         = "seed"
	flagTimeout      = "timeout"
	flagTrials       = "trials"
	flagPause        = "pause"
)

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transfersim",
		Short: "Concurrent transfer simulator",
		Long: `transfersim executes random transfers between in-memory accounts on a pool of workers.

Without arguments it runs the unsynchronized simulation, which races and may lose money,
followed by the synchronized simulation, which holds one lock per transfer and conserves
the total balance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulations(cmd, in, out)
		},
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	// Global flags
	rootCmd.PersistentFlags().String(flagConfig, "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool(flagJSON, false, "Output as JSON")
	rootCmd.PersistentFlags().Bool(flagMetrics, false, "Print collected metrics and spans at the end")

	addRunFlags(rootCmd)

	rootCmd.AddCommand(
		newRunCmd(in, out),
		newTrialsCmd(in, out),
		newVersionCmd(out),
	)

	return rootCmd
}

// addSimulatorFlags adds the flags shared by every simulating command.
func addSimulatorFlags(cmd *cobra.Command) {
	cmd.Flags().Int(flagAccounts, 0, "Number of accounts (asked for when not set)")
	cmd.Flags().Int(flagBalance, 0, "Initial balance of every account (asked for when not set)")
	cmd.Flags().Int(flagTransactions, 0, "Transfer attempts per run (default 10000)")
	cmd.Flags().Int(flagWorkers, 0, "Worker pool size (default one per CPU)")
	cmd.Flags().Uint64(flagSeed, 0, "Seed for reproducible instructions (default random)")
	cmd.Flags().Duration(flagTimeout, 0, "Abort a run that takes longer than this")
}

func addRunFlags(cmd *cobra.Command) {
	addSimulatorFlags(cmd)
	cmd.Flags().Bool(flagPause, false, "Wait for ENTER before exiting")
}
