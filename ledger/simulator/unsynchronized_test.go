//go:build !race

// The tests in this file run the unsynchronized path, whose data race is intended.
// They are excluded from race detector builds.

package simulator_test

import (
	"context"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/simulator"
	. "github.com/AntonStoeckl/concurrent-transfers-go/testutil/helper" //nolint:revive
)

func Test_Run_Unsynchronized_CompletesEveryAttempt(t *testing.T) {
	// setup
	sim := newSimulator(t, simulator.WithWorkers(8))

	// arrange
	l := GivenLedger(t, 5, 1000)

	// act
	result, err := sim.Run(context.Background(), l, false)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Synchronized)
	assert.Equal(t, "unsynchronized", result.Mode())
	assert.Equal(t, simulator.DefaultTransactionCount, result.Attempts)
	assert.Equal(t,
		result.Attempts,
		result.Applied+result.SkippedSelf+result.SkippedInsufficientFunds+result.Faulted,
		"outcome counts should add up to the number of attempts",
	)
	assert.Equal(t, 5000, result.InitialTotal)
	assert.Equal(t, l.Sum(), result.FinalTotal)
	t.Logf("unsynchronized run ended with total %d (drift %d)", result.FinalTotal, result.Drift())
}

func Test_Run_Unsynchronized_WithOneWorker_ConservesTotal(t *testing.T) {
	// setup
	sim := newSimulator(t, simulator.WithWorkers(1))

	// arrange
	l := GivenLedger(t, 5, 1000)

	// act
	result, err := sim.Run(context.Background(), l, false)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Conserved(), "without concurrency there is nothing to race")
}

func Test_Trials_Unsynchronized_DemonstratesTheRace(t *testing.T) {
	// setup
	sim := newSimulator(t, simulator.WithWorkers(8))

	// act
	unsynchronized, unsyncErr := sim.Trials(context.Background(), 5, 1000, 20, false)
	synchronized, syncErr := sim.Trials(context.Background(), 5, 1000, 20, true)

	// assert
	require.NoError(t, unsyncErr)
	require.NoError(t, syncErr)

	assert.Equal(t, 20, unsynchronized.Trials)
	assert.Equal(t, 5000, unsynchronized.Expected)
	assert.LessOrEqual(t, unsynchronized.MinTotal, unsynchronized.MaxTotal)

	assert.Zero(t, synchronized.Diverged, "synchronized trials should never diverge")
	assert.Equal(t, 5000, synchronized.MinTotal)
	assert.Equal(t, 5000, synchronized.MaxTotal)

	t.Logf(
		"unsynchronized: %d of %d trials diverged (rate %.2f, totals %d..%d)",
		unsynchronized.Diverged, unsynchronized.Trials, unsynchronized.DivergenceRate(),
		unsynchronized.MinTotal, unsynchronized.MaxTotal,
	)
}

func Test_Run_Unsynchronized_ReportsDrift(t *testing.T) {
	const maxRuns = 100

	var (
		result     simulator.RunResult
		logHandler *LogHandlerSpy
		metrics    *MetricsCollectorSpy
		tracing    *TracingCollectorSpy
	)

	for range maxRuns {
		// setup
		logHandler = NewLogHandlerSpy(false)
		metrics = NewMetricsCollectorSpy(true)
		tracing = NewTracingCollectorSpy(true)

		sim := newSimulator(t,
			simulator.WithWorkers(8),
			simulator.WithLogger(slog.New(logHandler)),
			simulator.WithMetrics(metrics),
			simulator.WithTracing(tracing),
		)

		// arrange
		l := GivenLedgerWithBalances(t, 1000, 500, 1500, 1000, 1000)

		// act
		var err error
		result, err = sim.Run(context.Background(), l, false)
		require.NoError(t, err)

		if !result.Conserved() {
			break
		}
	}

	if result.Conserved() {
		t.Skipf("no unsynchronized run out of %d lost an update on this machine", maxRuns)
	}

	// assert
	drift := strconv.Itoa(result.Drift())

	assert.Equal(t, 4000, result.InitialTotal)
	assert.True(t, logHandler.HasWarnLogWithMessage("total balance drifted during run").
		WithAttrValue("drift", drift).
		WithAttrValue("run_id", result.RunID.String()).
		Assert(), "drift should be logged as a warning")
	assert.True(t, logHandler.HasInfoLogWithMessage("simulation run completed").Assert())

	assert.True(t, tracing.HasSpanRecordForName("transfersim.run").
		WithStatus("conflict").
		WithEndAttribute("drift", drift).
		Assert(), "a drifted run should finish its span as a conflict")

	assert.True(t, metrics.HasCounterRecordForMetric("transfersim_conservation_violations_total").
		WithMode("unsynchronized").
		Assert(), "a drifted run should count a conservation violation")
	assert.True(t, metrics.HasCounterRecordForMetric("transfersim_runs_total").
		WithStatus("conflict").
		WithLabel("mode", "unsynchronized").
		Assert())
	assert.True(t, metrics.HasValueRecordForMetric("transfersim_total_drift").WithMode("unsynchronized").Assert())

	value, found := metrics.ValueFor("transfersim_total_drift", map[string]string{"mode": "unsynchronized"})
	assert.True(t, found)
	assert.InDelta(t, float64(result.Drift()), value, 0)

	t.Logf("unsynchronized run drifted by %s", drift)
}
