// Package ledger provides the account ledger and the transfer operation
// for the concurrent transfer simulation.
//
// A Ledger is an ordered, fixed-length sequence of integer balances which all
// start at the same value. The sum of all balances is the conserved quantity:
// a transfer moves money between two accounts and never creates or destroys it,
// as long as transfers are applied one at a time.
//
// The balances are plain ints. Transfer performs a read-modify-write
// on two of them without any internal locking, so concurrent callers that do not
// serialize their transfers will race and can lose updates. Serialization is the
// caller's responsibility (see package simulator).
//
// This package also defines the dependency-free observability interfaces
// (Logger, ContextualLogger, MetricsCollector, TracingCollector) and the
// FaultReporter side channel used by the simulator.
//
// Common usage pattern:
//
//	l, err := ledger.New(5, 1000)
//	if err != nil {
//		// handle ErrInvalidArgument
//	}
//
//	outcome, err := l.Transfer(0, 1, 50)
//	if err != nil {
//		// handle ErrIndexOutOfRange, ErrInvalidAmount, ErrBalanceOverflow
//	}
//
//	total := l.Sum() // 5000
package ledger
