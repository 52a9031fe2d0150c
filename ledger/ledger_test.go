package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

func Test_New_CreatesAccountsWithInitialBalance(t *testing.T) {
	// act
	l, err := ledger.New(5, 100)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 5, l.Len(), "ledger should hold the requested number of accounts")
	assert.Equal(t, []int{100, 100, 100, 100, 100}, l.Balances(), "every account should start with the initial balance")
	assert.Equal(t, 500, l.Sum(), "sum should be count × initial balance")
	assert.Equal(t, 500, l.InitialTotal(), "initial total should be count × initial balance")
	assert.Equal(t, 100, l.InitialBalance())
}

func Test_New_ShouldFail_WithNonPositiveArguments(t *testing.T) {
	testCases := []struct {
		name           string
		count          int
		initialBalance int
	}{
		{name: "zero accounts", count: 0, initialBalance: 100},
		{name: "negative accounts", count: -3, initialBalance: 100},
		{name: "zero balance", count: 3, initialBalance: 0},
		{name: "negative balance", count: 3, initialBalance: -1},
		{name: "overflowing total", count: 2, initialBalance: math.MaxInt},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			l, err := ledger.New(tc.count, tc.initialBalance)

			// assert
			assert.ErrorIs(t, err, ledger.ErrInvalidArgument)
			assert.Nil(t, l, "no ledger should be returned on invalid arguments")
		})
	}
}

func Test_Transfer_MovesAmountBetweenAccounts(t *testing.T) {
	// arrange
	l, err := ledger.New(2, 100)
	require.NoError(t, err)

	// act
	outcome, err := l.Transfer(0, 1, 50)

	// assert
	require.NoError(t, err)
	assert.Equal(t, ledger.TransferApplied, outcome)
	assert.Equal(t, []int{50, 150}, l.Balances())
}

func Test_Transfer_IsNoOp_WithInsufficientFunds(t *testing.T) {
	// arrange
	l, err := ledger.New(2, 100)
	require.NoError(t, err)

	// act
	outcome, err := l.Transfer(0, 1, 150)

	// assert
	require.NoError(t, err, "insufficient funds is not an error")
	assert.Equal(t, ledger.TransferSkippedInsufficientFunds, outcome)
	assert.Equal(t, []int{100, 100}, l.Balances(), "balances should be unchanged")
}

func Test_Transfer_AllowsWithdrawingTheWholeBalance(t *testing.T) {
	// arrange
	l, err := ledger.New(2, 100)
	require.NoError(t, err)

	// act
	outcome, err := l.Transfer(1, 0, 100)

	// assert
	require.NoError(t, err)
	assert.Equal(t, ledger.TransferApplied, outcome)
	assert.Equal(t, []int{200, 0}, l.Balances())
}

func Test_Transfer_IsNoOp_ForSelfTransfer(t *testing.T) {
	// arrange
	l, err := ledger.New(3, 100)
	require.NoError(t, err)

	for i := 0; i < l.Len(); i++ {
		for _, amount := range []int{1, 50, 99, 100, 1000} {
			// act
			outcome, err := l.Transfer(i, i, amount)

			// assert
			require.NoError(t, err)
			assert.Equal(t, ledger.TransferSkippedSelf, outcome)

			balance, err := l.Balance(i)
			require.NoError(t, err)
			assert.Equal(t, 100, balance, "self-transfer must never change the balance")
		}
	}
}

func Test_Transfer_ShouldFail_WithIndexOutOfRange(t *testing.T) {
	testCases := []struct {
		name string
		from int
		to   int
	}{
		{name: "negative from", from: -1, to: 1},
		{name: "from past the end", from: 3, to: 1},
		{name: "negative to", from: 0, to: -1},
		{name: "to past the end", from: 0, to: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			l, err := ledger.New(3, 100)
			require.NoError(t, err)

			// act
			outcome, err := l.Transfer(tc.from, tc.to, 10)

			// assert
			assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)
			assert.Equal(t, ledger.TransferRejected, outcome)
			assert.Equal(t, []int{100, 100, 100}, l.Balances(), "a rejected transfer must not touch any balance")
		})
	}
}

func Test_Transfer_ShouldFail_WithNonPositiveAmount(t *testing.T) {
	// arrange
	l, err := ledger.New(2, 100)
	require.NoError(t, err)

	// act
	_, errZero := l.Transfer(0, 1, 0)
	_, errNegative := l.Transfer(0, 1, -5)

	// assert
	assert.ErrorIs(t, errZero, ledger.ErrInvalidAmount)
	assert.ErrorIs(t, errNegative, ledger.ErrInvalidAmount)
	assert.Equal(t, []int{100, 100}, l.Balances())
}

func Test_Reset_RestoresInitialBalances(t *testing.T) {
	// arrange
	l, err := ledger.New(3, 100)
	require.NoError(t, err)
	_, err = l.Transfer(0, 2, 60)
	require.NoError(t, err)

	// act
	l.Reset()

	// assert
	assert.Equal(t, []int{100, 100, 100}, l.Balances())
}

func Test_Balances_ReturnsACopy(t *testing.T) {
	// arrange
	l, err := ledger.New(2, 100)
	require.NoError(t, err)

	// act
	balances := l.Balances()
	balances[0] = 0

	// assert
	assert.Equal(t, 200, l.Sum(), "mutating the returned slice must not change the ledger")
}

func Test_Balance_ShouldFail_WithIndexOutOfRange(t *testing.T) {
	// arrange
	l, err := ledger.New(2, 100)
	require.NoError(t, err)

	// act
	_, err = l.Balance(2)

	// assert
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)
}

func Test_TransferOutcome_String(t *testing.T) {
	assert.Equal(t, "applied", ledger.TransferApplied.String())
	assert.Equal(t, "skipped_self", ledger.TransferSkippedSelf.String())
	assert.Equal(t, "skipped_insufficient_funds", ledger.TransferSkippedInsufficientFunds.String())
	assert.Equal(t, "rejected", ledger.TransferRejected.String())
	assert.Equal(t, "unknown", ledger.TransferOutcome(42).String())
}
