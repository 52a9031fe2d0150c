package simulator

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

var (
	// ErrInvalidTransactionCount is returned when the transaction count is not positive.
	ErrInvalidTransactionCount = errors.New("transaction count must be positive")

	// ErrInvalidWorkerCount is returned when the worker count is not positive.
	ErrInvalidWorkerCount = errors.New("worker count must be positive")

	// ErrNilInstructionGenerator is returned when a nil generator is provided to WithInstructionGenerator.
	ErrNilInstructionGenerator = errors.New("instruction generator must not be nil")

	// ErrInvalidRunTimeout is returned when the run timeout is not positive.
	ErrInvalidRunTimeout = errors.New("run timeout must be positive")
)

// Option defines a functional option for configuring a Simulator.
type Option func(*Simulator) error

// WithTransactionCount sets the number of transfer attempts per run (default 10 000).
func WithTransactionCount(count int) Option {
	return func(s *Simulator) error {
		if count <= 0 {
			return ErrInvalidTransactionCount
		}

		s.transactionCount = count

		return nil
	}
}

// WithWorkers sets the size of the worker pool (default runtime.GOMAXPROCS(0)).
func WithWorkers(workers int) Option {
	return func(s *Simulator) error {
		if workers <= 0 {
			return ErrInvalidWorkerCount
		}

		s.workerCount = workers

		return nil
	}
}

// WithSeed makes every run draw its instructions from per-worker generators seeded with seed.
// Without it each run picks a fresh random seed.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) error {
		s.seed = seed
		s.seeded = true

		return nil
	}
}

// WithInstructionGenerator replaces the uniform instruction generator.
func WithInstructionGenerator(generator InstructionGenerator) Option {
	return func(s *Simulator) error {
		if generator == nil {
			return ErrNilInstructionGenerator
		}

		s.generator = generator

		return nil
	}
}

// WithRunTimeout bounds the duration of a single run. A run that does not finish in time fails with ErrRunAborted.
func WithRunTimeout(timeout time.Duration) Option {
	return func(s *Simulator) error {
		if timeout <= 0 {
			return ErrInvalidRunTimeout
		}

		s.runTimeout = timeout

		return nil
	}
}

// WithFaultReporter sets the side channel which receives every faulted attempt.
func WithFaultReporter(reporter ledger.FaultReporter) Option {
	return func(s *Simulator) error {
		s.faultReporter = reporter
		return nil
	}
}

// WithLogger sets the logger for the Simulator.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: run start with the effective worker count and seed
// Info level: run completion with outcome counts, totals and duration
// Warn level: conservation drift detected at the end of a run
// Error level: faulted attempts and aborted runs.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Simulator) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Simulator.
// The contextual logger will receive the same messages as the Logger, with the run context attached,
// enabling automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(s *Simulator) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Simulator.
// The collector will receive run durations, outcome counts, final totals, drift and fault counts.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(s *Simulator) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Simulator.
// Every run is wrapped in one span.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(s *Simulator) error {
		s.tracingCollector = collector
		return nil
	}
}
