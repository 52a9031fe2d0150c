package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/fifoqueue"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

// DefaultTransactionCount is the number of transfer attempts per run unless WithTransactionCount is used.
const DefaultTransactionCount = 10000

var (
	// ErrNilLedger is returned when Run is called without a ledger.
	ErrNilLedger = errors.New("ledger must not be nil")

	// ErrRunAborted is returned when a run could not complete all of its attempts.
	// The partial RunResult is returned alongside.
	ErrRunAborted = errors.New("simulation run aborted")

	// ErrAttemptPanicked is the fault recorded for an attempt which panicked. The run continues.
	ErrAttemptPanicked = errors.New("transfer attempt panicked")
)

// Simulator executes batches of random transfer attempts against a ledger on a bounded worker pool.
// A Simulator holds configuration only, so one instance can execute many runs, also concurrently on
// different ledgers.
type Simulator struct {
	transactionCount int
	workerCount      int
	seed             uint64
	seeded           bool
	generator        InstructionGenerator
	runTimeout       time.Duration
	faultReporter    ledger.FaultReporter
	logger           ledger.Logger
	contextualLogger ledger.ContextualLogger
	metricsCollector ledger.MetricsCollector
	tracingCollector ledger.TracingCollector
}

// NewSimulator creates a Simulator with 10 000 attempts per run, one worker per available CPU
// and uniformly drawn instructions, then applies the given options.
func NewSimulator(options ...Option) (*Simulator, error) {
	s := &Simulator{
		transactionCount: DefaultTransactionCount,
		workerCount:      runtime.GOMAXPROCS(0),
		generator:        UniformInstructions,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// TransactionCount returns the number of attempts per run.
func (s *Simulator) TransactionCount() int {
	return s.transactionCount
}

// Workers returns the size of the worker pool.
func (s *Simulator) Workers() int {
	return s.workerCount
}

// attemptFault is one faulted attempt on its way to the fault reporter.
type attemptFault struct {
	at          time.Time
	attempt     int
	instruction Instruction
	err         error
}

// run is the state of one Run call. Nothing in it outlives the call.
type run struct {
	id           uuid.UUID
	ledger       *ledger.Ledger
	synchronized bool
	lock         sync.Locker // nil when unsynchronized
	seed         uint64

	attempts            atomic.Int64
	applied             atomic.Int64
	skippedSelf         atomic.Int64
	skippedInsufficient atomic.Int64
	faulted             atomic.Int64

	faults *fifoqueue.Queue[attemptFault]
}

func (s *Simulator) newRun(l *ledger.Ledger, synchronized bool) *run {
	r := &run{
		id:           uuid.New(),
		ledger:       l,
		synchronized: synchronized,
		seed:         s.seed,
		faults:       fifoqueue.New[attemptFault](),
	}

	if synchronized {
		r.lock = &sync.Mutex{}
	}

	if !s.seeded {
		r.seed = rand.Uint64() //nolint:gosec
	}

	return r
}

// Run executes the configured number of transfer attempts against l and blocks until all of them have
// finished and every faulted attempt has been reported.
//
// With synchronized set, every transfer runs while holding one lock shared by all workers of this run,
// so the total balance of l is conserved. Without it, transfers interleave freely and updates may be lost.
//
// Faulted attempts never abort the run, this includes attempts which panic. If the context is cancelled or
// the run timeout expires before all attempts have finished, Run returns the partial result and an error
// wrapping ErrRunAborted.
func (s *Simulator) Run(ctx context.Context, l *ledger.Ledger, synchronized bool) (RunResult, error) {
	if l == nil {
		return RunResult{}, ErrNilLedger
	}

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	r := s.newRun(l, synchronized)

	ctx, span := s.startRunSpan(ctx, r)

	s.logDebug(
		ctx,
		logMsgRunStarted,
		logAttrRunID, r.id.String(),
		logAttrSynchronized, synchronized,
		logAttrAccounts, l.Len(),
		logAttrWorkers, s.workerCount,
		logAttrSeed, r.seed,
		logAttrAttempts, s.transactionCount,
	)

	initialTotal := l.Sum()
	start := time.Now()

	reported := make(chan struct{})
	go func() {
		defer close(reported)
		r.faults.Consume(func(fault attemptFault) {
			s.reportAttemptFault(ctx, r, fault)
		})
	}()

	dispatchErr := s.dispatch(ctx, r)

	r.faults.Close()
	<-reported

	result := r.result(initialTotal, s.workerCount, time.Since(start))

	if dispatchErr != nil && result.Attempts == s.transactionCount && isContextError(dispatchErr) {
		// every attempt finished before the cancellation was observed
		dispatchErr = nil
	}

	if dispatchErr != nil {
		s.logError(ctx, logMsgRunAborted, dispatchErr, resultArgs(result)...)
		s.recordRunMetrics(ctx, result, statusError)
		s.finishRunSpan(span, result, statusError)

		return result, fmt.Errorf("%w: %w", ErrRunAborted, dispatchErr)
	}

	status := statusSuccess
	if !result.Conserved() {
		status = statusConflict
		s.logWarning(ctx, logMsgConservationDrift, append(resultArgs(result), logAttrDrift, result.Drift())...)
	}

	s.logOperation(ctx, logMsgRunCompleted, resultArgs(result)...)
	s.recordRunMetrics(ctx, result, status)
	s.finishRunSpan(span, result, status)

	return result, nil
}

// dispatch feeds the attempt numbers through a bounded queue to the worker pool and waits for all workers.
func (s *Simulator) dispatch(ctx context.Context, r *run) error {
	group, groupCtx := errgroup.WithContext(ctx)
	attemptQueue := make(chan int, s.workerCount*2)

	group.Go(func() error {
		defer close(attemptQueue)

		for attempt := range s.transactionCount {
			select {
			case attemptQueue <- attempt:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}

		return nil
	})

	for workerID := range s.workerCount {
		group.Go(func() error {
			return s.worker(groupCtx, r, workerID, attemptQueue)
		})
	}

	return group.Wait()
}

// worker processes attempts from the queue until it is closed or the context is done.
func (s *Simulator) worker(ctx context.Context, r *run, workerID int, attemptQueue <-chan int) error {
	rng := rand.New(rand.NewPCG(r.seed, uint64(workerID))) //nolint:gosec

	for {
		select {
		case attempt, ok := <-attemptQueue:
			if !ok {
				return nil
			}

			r.execute(s.generator, rng, attempt)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// execute draws one instruction, applies it and records its outcome.
// A panic while drawing or applying the instruction faults this attempt only.
func (r *run) execute(generator InstructionGenerator, rng *rand.Rand, attempt int) {
	var instruction Instruction

	defer func() {
		if recovered := recover(); recovered != nil {
			r.recordFault(attempt, instruction, fmt.Errorf("%w: %v", ErrAttemptPanicked, recovered))
		}

		r.attempts.Inc()
	}()

	instruction = generator.Next(rng, r.ledger.Len())

	transferOutcome, err := r.transfer(instruction)

	switch outcomeOf(transferOutcome, err) {
	case AttemptApplied:
		r.applied.Inc()
	case AttemptSkippedSelf:
		r.skippedSelf.Inc()
	case AttemptSkippedInsufficientFunds:
		r.skippedInsufficient.Inc()
	case AttemptFaulted:
		if err == nil {
			err = fmt.Errorf("unexpected transfer outcome %s", transferOutcome)
		}

		r.recordFault(attempt, instruction, err)
	}
}

// recordFault counts a faulted attempt and queues it for reporting.
func (r *run) recordFault(attempt int, instruction Instruction, err error) {
	r.faulted.Inc()
	r.faults.Push(attemptFault{
		at:          time.Now(),
		attempt:     attempt,
		instruction: instruction,
		err:         err,
	})
}

func (r *run) transfer(instruction Instruction) (ledger.TransferOutcome, error) {
	if r.lock != nil {
		r.lock.Lock()
		defer r.lock.Unlock()
	}

	return r.ledger.Transfer(instruction.From, instruction.To, instruction.Amount)
}

func (r *run) result(initialTotal, workers int, duration time.Duration) RunResult {
	return RunResult{
		RunID:                    r.id,
		Synchronized:             r.synchronized,
		Accounts:                 r.ledger.Len(),
		Workers:                  workers,
		Attempts:                 int(r.attempts.Load()),
		Applied:                  int(r.applied.Load()),
		SkippedSelf:              int(r.skippedSelf.Load()),
		SkippedInsufficientFunds: int(r.skippedInsufficient.Load()),
		Faulted:                  int(r.faulted.Load()),
		InitialTotal:             initialTotal,
		FinalTotal:               r.ledger.Sum(),
		Balances:                 r.ledger.Balances(),
		Duration:                 duration,
	}
}

// reportAttemptFault sends one faulted attempt to the loggers, the metrics collector and the fault reporter.
// It is only called from the single fault consuming goroutine of a run.
func (s *Simulator) reportAttemptFault(ctx context.Context, r *run, fault attemptFault) {
	s.logError(
		ctx,
		logMsgAttemptFaulted,
		fault.err,
		logAttrRunID, r.id.String(),
		logAttrAttempt, fault.attempt,
		logAttrFrom, fault.instruction.From,
		logAttrTo, fault.instruction.To,
		logAttrAmount, fault.instruction.Amount,
	)

	s.incrementCounterContext(ctx, metricAttemptFaults, map[string]string{labelMode: modeLabel(r.synchronized)})

	if s.faultReporter != nil {
		s.faultReporter.ReportFault(
			fault.at,
			fmt.Sprintf(
				"transfer attempt %d failed: amount %d from account %d to account %d",
				fault.attempt, fault.instruction.Amount, fault.instruction.From, fault.instruction.To,
			),
			fault.err,
		)
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
