package helper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

// GivenLedger creates a ledger with count accounts of initialBalance each.
func GivenLedger(t testing.TB, count, initialBalance int) *ledger.Ledger {
	l, err := ledger.New(count, initialBalance)
	require.NoError(t, err, "error in arranging test data")

	return l
}

// GivenLedgerWithBalances creates a ledger whose accounts hold the given balances.
// Every account starts at initialBalance and the differences are settled against account 0,
// so the balances must add up to len(balances) * initialBalance.
func GivenLedgerWithBalances(t testing.TB, initialBalance int, balances ...int) *ledger.Ledger {
	l := GivenLedger(t, len(balances), initialBalance)

	for i := 1; i < len(balances); i++ {
		diff := initialBalance - balances[i]
		if diff > 0 {
			_, err := l.Transfer(i, 0, diff)
			require.NoError(t, err, "error in arranging test data")
		}

		if diff < 0 {
			_, err := l.Transfer(0, i, -diff)
			require.NoError(t, err, "error in arranging test data")
		}
	}

	require.Equal(t, balances, l.Balances(), "error in arranging test data")

	return l
}
