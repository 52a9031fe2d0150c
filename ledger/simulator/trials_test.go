package simulator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/simulator"
)

func Test_Trials_Synchronized_NeverDiverge(t *testing.T) {
	// setup
	sim := newSimulator(t, simulator.WithTransactionCount(2000), simulator.WithWorkers(4))

	// act
	summary, err := sim.Trials(context.Background(), 5, 1000, 10, true)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Trials)
	assert.Equal(t, 5, summary.Accounts)
	assert.Equal(t, 5000, summary.Expected)
	assert.Zero(t, summary.Diverged)
	assert.Equal(t, 5000, summary.MinTotal)
	assert.Equal(t, 5000, summary.MaxTotal)
	assert.InDelta(t, 0.0, summary.DivergenceRate(), 0)
	assert.Equal(t, "synchronized", summary.Mode())
	assert.NoError(t, summary.CheckConservation())
}

func Test_Trials_ShouldFail_WithInvalidTrialCount(t *testing.T) {
	// setup
	sim := newSimulator(t)

	// act
	_, err := sim.Trials(context.Background(), 5, 1000, 0, true)

	// assert
	assert.ErrorIs(t, err, simulator.ErrInvalidTrialCount)
}

func Test_Trials_ShouldFail_WithInvalidLedger(t *testing.T) {
	// setup
	sim := newSimulator(t)

	// act
	_, err := sim.Trials(context.Background(), 0, 1000, 3, true)

	// assert
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)
}

func Test_Trials_ShouldStop_WhenRunAborts(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := newSimulator(t)

	// act
	summary, err := sim.Trials(ctx, 5, 1000, 3, true)

	// assert
	assert.ErrorIs(t, err, simulator.ErrRunAborted)
	assert.Contains(t, err.Error(), "trial 1 of 3")
	assert.Zero(t, summary.Trials, "no trial should have completed")
}

func Test_TrialSummary_DivergenceRate_WithoutTrials(t *testing.T) {
	assert.InDelta(t, 0.0, simulator.TrialSummary{}.DivergenceRate(), 0)
}

func Test_TrialSummary_CheckConservation_ReportsDivergedTrials(t *testing.T) {
	// arrange
	summary := simulator.TrialSummary{Trials: 10, Diverged: 3, Expected: 300, MinTotal: 250, MaxTotal: 310}

	// act
	err := summary.CheckConservation()

	// assert
	assert.ErrorIs(t, err, ledger.ErrConservationViolated)
	assert.ErrorContains(t, err, "3 of 10 unsynchronized trials diverged from total 300 (min 250, max 310)")
}
