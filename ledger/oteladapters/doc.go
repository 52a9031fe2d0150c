// Package oteladapters provides OpenTelemetry implementations of the ledger observability interfaces.
//
// Simulator runs report through ledger.Logger, ledger.ContextualLogger, ledger.MetricsCollector and
// ledger.TracingCollector. The adapters in this package map those calls onto OpenTelemetry loggers,
// instruments and spans, so a simulator can be wired to any OpenTelemetry backend:
//
//	meter := otel.GetMeterProvider().Meter("transfersim")
//	tracer := otel.GetTracerProvider().Tracer("transfersim")
//
//	sim, err := simulator.NewSimulator(
//		simulator.WithMetrics(oteladapters.NewMetricsCollector(meter)),
//		simulator.WithTracing(oteladapters.NewTracingCollector(tracer)),
//		simulator.WithContextualLogger(oteladapters.NewSlogBridgeLogger("transfersim")),
//	)
package oteladapters
