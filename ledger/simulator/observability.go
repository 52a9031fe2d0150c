package simulator

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

const (
	logMsgRunStarted           = "simulation run started"
	logMsgRunCompleted         = "simulation run completed"
	logMsgRunAborted           = "simulation run aborted"
	logMsgConservationDrift    = "total balance drifted during run"
	logMsgAttemptFaulted       = "transfer attempt failed"
	logAttrRunID               = "run_id"
	logAttrSynchronized        = "synchronized"
	logAttrAccounts            = "accounts"
	logAttrWorkers             = "workers"
	logAttrSeed                = "seed"
	logAttrAttempts            = "attempts"
	logAttrApplied             = "applied"
	logAttrSkippedSelf         = "skipped_self"
	logAttrSkippedInsufficient = "skipped_insufficient_funds"
	logAttrFaulted             = "faulted"
	logAttrInitialTotal        = "initial_total"
	logAttrFinalTotal          = "final_total"
	logAttrDrift               = "drift"
	logAttrDurationMS          = "duration_ms"
	logAttrAttempt             = "attempt"
	logAttrFrom                = "from"
	logAttrTo                  = "to"
	logAttrAmount              = "amount"
	logAttrError               = "error"

	metricRunDuration            = "transfersim_run_duration_seconds"
	metricRuns                   = "transfersim_runs_total"
	metricAttempts               = "transfersim_attempts_total"
	metricAttemptFaults          = "transfersim_attempt_faults_total"
	metricFinalTotal             = "transfersim_final_total"
	metricTotalDrift             = "transfersim_total_drift"
	metricConservationViolations = "transfersim_conservation_violations_total"

	spanNameRun     = "transfersim.run"
	spanAttrRunID   = "run_id"
	spanAttrMode    = "mode"
	spanAttrCount   = "accounts"
	spanAttrTries   = "attempts"
	spanAttrWorkers = "workers"
	spanAttrFaulted = "faulted"
	spanAttrDrift   = "drift"

	labelMode    = "mode"
	labelOutcome = "outcome"
	labelStatus  = "status"

	modeSynchronized   = "synchronized"
	modeUnsynchronized = "unsynchronized"

	outcomeApplied                  = "applied"
	outcomeSkippedSelf              = "skipped_self"
	outcomeSkippedInsufficientFunds = "skipped_insufficient_funds"
	outcomeFaulted                  = "faulted"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "conflict"
)

// logDebug logs at debug level to every configured logger.
func (s *Simulator) logDebug(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

// logOperation logs operational information at info level to every configured logger.
func (s *Simulator) logOperation(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

// logWarning logs non-fatal anomalies at warn level to every configured logger.
func (s *Simulator) logWarning(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

// logError logs error information at the error level to every configured logger.
func (s *Simulator) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// resultArgs flattens a RunResult into slog-style key/value pairs.
func resultArgs(result RunResult) []any {
	return []any{
		logAttrRunID, result.RunID.String(),
		logAttrSynchronized, result.Synchronized,
		logAttrAttempts, result.Attempts,
		logAttrApplied, result.Applied,
		logAttrSkippedSelf, result.SkippedSelf,
		logAttrSkippedInsufficient, result.SkippedInsufficientFunds,
		logAttrFaulted, result.Faulted,
		logAttrInitialTotal, result.InitialTotal,
		logAttrFinalTotal, result.FinalTotal,
		logAttrDurationMS, toMilliseconds(result.Duration),
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// incrementCounterContext increments a counter with context if the collector supports it.
func (s *Simulator) incrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricName, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricName, labels)
	}
}

// recordValueContext records a value with context if the collector supports it.
func (s *Simulator) recordValueContext(ctx context.Context, metricName string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		s.metricsCollector.RecordValue(metricName, value, labels)
	}
}

// recordDurationContext records a duration with context if the collector supports it.
func (s *Simulator) recordDurationContext(ctx context.Context, metricName string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordRunMetrics records the per-run metrics once all attempts have finished.
func (s *Simulator) recordRunMetrics(ctx context.Context, result RunResult, status string) {
	if s.metricsCollector == nil {
		return
	}

	mode := result.Mode()

	s.recordDurationContext(ctx, metricRunDuration, result.Duration, map[string]string{
		labelMode:   mode,
		labelStatus: status,
	})

	s.incrementCounterContext(ctx, metricRuns, map[string]string{
		labelMode:   mode,
		labelStatus: status,
	})

	outcomes := map[string]int{
		outcomeApplied:                  result.Applied,
		outcomeSkippedSelf:              result.SkippedSelf,
		outcomeSkippedInsufficientFunds: result.SkippedInsufficientFunds,
		outcomeFaulted:                  result.Faulted,
	}
	for outcome, count := range outcomes {
		s.recordValueContext(ctx, metricAttempts, float64(count), map[string]string{
			labelMode:    mode,
			labelOutcome: outcome,
		})
	}

	s.recordValueContext(ctx, metricFinalTotal, float64(result.FinalTotal), map[string]string{labelMode: mode})
	s.recordValueContext(ctx, metricTotalDrift, float64(result.Drift()), map[string]string{labelMode: mode})

	if !result.Conserved() {
		s.incrementCounterContext(ctx, metricConservationViolations, map[string]string{labelMode: mode})
	}
}

// startRunSpan starts a tracing span for one run if the tracing collector is configured.
func (s *Simulator) startRunSpan(ctx context.Context, r *run) (context.Context, ledger.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanNameRun, map[string]string{
		spanAttrRunID:   r.id.String(),
		spanAttrMode:    modeLabel(r.synchronized),
		spanAttrCount:   strconv.Itoa(r.ledger.Len()),
		spanAttrTries:   strconv.Itoa(s.transactionCount),
		spanAttrWorkers: strconv.Itoa(s.workerCount),
	})
}

// finishRunSpan finishes a run span if the tracing collector is configured.
func (s *Simulator) finishRunSpan(span ledger.SpanContext, result RunResult, status string) {
	if s.tracingCollector == nil || span == nil {
		return
	}

	s.tracingCollector.FinishSpan(span, status, map[string]string{
		spanAttrFaulted: strconv.Itoa(result.Faulted),
		spanAttrDrift:   strconv.Itoa(result.Drift()),
	})
}
