// Package simulator runs random transfer attempts concurrently against a ledger.Ledger.
//
// A run draws a fixed number of transfer instructions, executes them on a bounded pool of workers and
// blocks until every worker has finished. The caller picks the synchronization policy per run:
//
//   - unsynchronized: transfers take no lock. Concurrent read-modify-write sequences on the same balance
//     interleave and updates get lost, so the total balance usually drifts.
//   - synchronized: every transfer holds one mutex shared by all workers of the run. Transfers are totally
//     ordered and the total balance is conserved.
//
// The mutex belongs to the run, never to the package, so independent runs do not interfere.
//
// Usage:
//
//	sim, err := simulator.NewSimulator(
//		simulator.WithTransactionCount(10000),
//		simulator.WithLogger(slog.Default()),
//	)
//	if err != nil {
//		return err
//	}
//
//	l, err := ledger.New(5, 1000)
//	if err != nil {
//		return err
//	}
//
//	result, err := sim.Run(ctx, l, true)
//	if err != nil {
//		return err
//	}
//
//	if err := result.CheckConservation(); err != nil {
//		return err
//	}
//
// Attempts that fault, for example because a custom InstructionGenerator produced an account index outside
// the ledger, are counted and reported through the configured loggers and the ledger.FaultReporter. They never
// abort the run, and neither does an attempt that panics: it is recorded as faulted with ErrAttemptPanicked.
// Only a cancelled context or an expired run timeout abort a run, in which case Run returns the partial result
// together with an error wrapping ErrRunAborted.
package simulator
