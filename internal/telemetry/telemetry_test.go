package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/telemetry"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/oteladapters"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/simulator"
	"github.com/AntonStoeckl/concurrent-transfers-go/testutil/helper"
)

func Test_Snapshot_CollectsSimulatorMetricsAndSpans(t *testing.T) {
	// setup
	providers := telemetry.New("transfersim-test")
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	sim, err := simulator.NewSimulator(
		simulator.WithTransactionCount(200),
		simulator.WithWorkers(4),
		simulator.WithMetrics(oteladapters.NewMetricsCollector(providers.Meter())),
		simulator.WithTracing(oteladapters.NewTracingCollector(providers.Tracer())),
	)
	require.NoError(t, err)

	// arrange
	l := helper.GivenLedger(t, 5, 100)

	// act
	_, err = sim.Run(context.Background(), l, true)
	require.NoError(t, err)

	snapshot, err := providers.Snapshot(context.Background())

	// assert
	require.NoError(t, err)

	runs, found := snapshot.Value("transfersim_runs_total", map[string]string{"mode": "synchronized", "status": "success"})
	assert.True(t, found, "run counter should be collected")
	assert.Equal(t, 1.0, runs)

	finalTotal, found := snapshot.Value("transfersim_final_total", map[string]string{"mode": "synchronized"})
	assert.True(t, found, "final total gauge should be collected")
	assert.Equal(t, 500.0, finalTotal)

	_, found = snapshot.Value("transfersim_conservation_violations_total", nil)
	assert.False(t, found, "a conserved run should not count a violation")

	require.Len(t, snapshot.Spans, 1)
	assert.Equal(t, "transfersim.run", snapshot.Spans[0].Name)
	assert.Equal(t, "Ok", snapshot.Spans[0].Status)
	assert.Equal(t, "synchronized", snapshot.Spans[0].Attributes["mode"])
	assert.GreaterOrEqual(t, snapshot.Spans[0].DurationMS, 0.0)
}

func Test_Snapshot_SortsMetricPointsByName(t *testing.T) {
	// setup
	providers := telemetry.New("transfersim-test")
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })
	collector := oteladapters.NewMetricsCollector(providers.Meter())

	// arrange
	collector.IncrementCounter("b_total", map[string]string{"mode": "synchronized"})
	collector.RecordValue("a_value", 3, nil)
	collector.IncrementCounter("b_total", map[string]string{"mode": "synchronized"})

	// act
	snapshot, err := providers.Snapshot(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, snapshot.Metrics, 2)
	assert.Equal(t, "a_value", snapshot.Metrics[0].Name)
	assert.Equal(t, "gauge", snapshot.Metrics[0].Kind)
	assert.Equal(t, "b_total", snapshot.Metrics[1].Name)
	assert.Equal(t, "counter", snapshot.Metrics[1].Kind)
	assert.Equal(t, 2.0, snapshot.Metrics[1].Value)
	assert.Empty(t, snapshot.Spans)
}

func Test_Install_SetsGlobalProviders(t *testing.T) {
	// setup
	previousTracerProvider := otel.GetTracerProvider()
	previousMeterProvider := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(previousTracerProvider)
		otel.SetMeterProvider(previousMeterProvider)
	})

	providers := telemetry.New("transfersim-test")
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	// act
	providers.Install()

	// assert
	assert.Same(t, providers.TracerProvider, otel.GetTracerProvider())
	assert.Same(t, providers.MeterProvider, otel.GetMeterProvider())
}

func Test_Snapshot_ShouldFail_AfterShutdown(t *testing.T) {
	// setup
	providers := telemetry.New("transfersim-test")

	// act
	require.NoError(t, providers.Shutdown(context.Background()))
	_, err := providers.Snapshot(context.Background())

	// assert
	assert.ErrorContains(t, err, "collecting metrics")
}
