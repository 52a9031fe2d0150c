package ledger

import (
	"fmt"
	"math"
)

// TransferOutcome tells what a single Transfer call did to the ledger.
type TransferOutcome int

const (
	// TransferApplied means the amount was moved from one account to the other.
	TransferApplied TransferOutcome = iota

	// TransferSkippedSelf means from and to were the same account, nothing changed.
	TransferSkippedSelf

	// TransferSkippedInsufficientFunds means the source balance was lower than the amount, nothing changed.
	TransferSkippedInsufficientFunds

	// TransferRejected accompanies a non-nil error: the instruction itself was invalid, nothing changed.
	TransferRejected
)

// String returns the label used in logs and metrics.
func (o TransferOutcome) String() string {
	switch o {
	case TransferApplied:
		return "applied"
	case TransferSkippedSelf:
		return "skipped_self"
	case TransferSkippedInsufficientFunds:
		return "skipped_insufficient_funds"
	case TransferRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Ledger is an ordered, fixed-length collection of account balances.
// Indices 0..Len()-1 are stable for the life of the Ledger.
//
// A Ledger is not safe for concurrent use. Callers which transfer concurrently
// must serialize Transfer calls themselves if they want the total to be conserved.
type Ledger struct {
	balances       []int
	initialBalance int
}

// New creates a Ledger with count accounts, each holding initialBalance.
// It returns ErrInvalidArgument if count or initialBalance is not positive.
func New(count, initialBalance int) (*Ledger, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: account count must be positive, got %d", ErrInvalidArgument, count)
	}

	if initialBalance <= 0 {
		return nil, fmt.Errorf("%w: initial balance must be positive, got %d", ErrInvalidArgument, initialBalance)
	}

	if initialBalance > math.MaxInt/count {
		return nil, fmt.Errorf("%w: total of %d accounts with balance %d overflows", ErrInvalidArgument, count, initialBalance)
	}

	balances := make([]int, count)
	for i := range balances {
		balances[i] = initialBalance
	}

	return &Ledger{
		balances:       balances,
		initialBalance: initialBalance,
	}, nil
}

// Len returns the number of accounts.
func (l *Ledger) Len() int {
	return len(l.balances)
}

// InitialBalance returns the balance every account started with.
func (l *Ledger) InitialBalance() int {
	return l.initialBalance
}

// InitialTotal returns the conserved quantity, Len() × InitialBalance().
func (l *Ledger) InitialTotal() int {
	return len(l.balances) * l.initialBalance
}

// Balance returns the balance of account i.
func (l *Ledger) Balance(i int) (int, error) {
	if i < 0 || i >= len(l.balances) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(l.balances))
	}

	return l.balances[i], nil
}

// Balances returns a copy of all balances in index order.
func (l *Ledger) Balances() []int {
	out := make([]int, len(l.balances))
	copy(out, l.balances)

	return out
}

// Sum returns the total of all balances.
func (l *Ledger) Sum() int {
	total := 0
	for _, b := range l.balances {
		total += b
	}

	return total
}

// Reset restores every account to the initial balance.
func (l *Ledger) Reset() {
	for i := range l.balances {
		l.balances[i] = l.initialBalance
	}
}

// Transfer moves amount from account from to account to.
//
// The precondition is checked against the balance as observed at the time of the call:
// a self-transfer or a source balance lower than amount is a no-op and is reported
// through the returned TransferOutcome, not as an error.
//
// An index outside the ledger, a non-positive amount or an overflowing target balance
// is a fault: nothing is mutated and a wrapped ErrIndexOutOfRange, ErrInvalidAmount or
// ErrBalanceOverflow is returned.
//
// The withdrawal and the deposit are two separate writes. Transfer does no locking.
func (l *Ledger) Transfer(from, to, amount int) (TransferOutcome, error) {
	n := len(l.balances)

	if from < 0 || from >= n {
		return TransferRejected, fmt.Errorf("%w: from=%d not in [0, %d)", ErrIndexOutOfRange, from, n)
	}

	if to < 0 || to >= n {
		return TransferRejected, fmt.Errorf("%w: to=%d not in [0, %d)", ErrIndexOutOfRange, to, n)
	}

	if amount <= 0 {
		return TransferRejected, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	if from == to {
		return TransferSkippedSelf, nil
	}

	if l.balances[from] < amount {
		return TransferSkippedInsufficientFunds, nil
	}

	if l.balances[to] > math.MaxInt-amount {
		return TransferRejected, fmt.Errorf("%w: account %d holds %d, cannot add %d", ErrBalanceOverflow, to, l.balances[to], amount)
	}

	l.balances[from] -= amount
	l.balances[to] += amount

	return TransferApplied, nil
}
