package simulator

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

// AttemptOutcome is the result value of one transfer attempt.
type AttemptOutcome int

const (
	// AttemptApplied means the drawn transfer was applied to the ledger.
	AttemptApplied AttemptOutcome = iota

	// AttemptSkippedSelf means the drawn transfer named the same account twice and was skipped.
	AttemptSkippedSelf

	// AttemptSkippedInsufficientFunds means the source account could not cover the amount and the transfer was skipped.
	AttemptSkippedInsufficientFunds

	// AttemptFaulted means the attempt failed with an error or a panic and was recorded as a fault.
	AttemptFaulted
)

// String returns the label used in logs and metrics.
func (o AttemptOutcome) String() string {
	switch o {
	case AttemptApplied:
		return outcomeApplied
	case AttemptSkippedSelf:
		return outcomeSkippedSelf
	case AttemptSkippedInsufficientFunds:
		return outcomeSkippedInsufficientFunds
	case AttemptFaulted:
		return outcomeFaulted
	default:
		return "unknown"
	}
}

// outcomeOf maps the ledger's answer for one transfer to an AttemptOutcome.
func outcomeOf(transferOutcome ledger.TransferOutcome, err error) AttemptOutcome {
	if err != nil {
		return AttemptFaulted
	}

	switch transferOutcome {
	case ledger.TransferApplied:
		return AttemptApplied
	case ledger.TransferSkippedSelf:
		return AttemptSkippedSelf
	case ledger.TransferSkippedInsufficientFunds:
		return AttemptSkippedInsufficientFunds
	default:
		return AttemptFaulted
	}
}

// RunResult is the aggregated state of one finished (or aborted) run.
type RunResult struct {
	RunID                    uuid.UUID     `json:"run_id"`
	Synchronized             bool          `json:"synchronized"`
	Accounts                 int           `json:"accounts"`
	Workers                  int           `json:"workers"`
	Attempts                 int           `json:"attempts"`
	Applied                  int           `json:"applied"`
	SkippedSelf              int           `json:"skipped_self"`
	SkippedInsufficientFunds int           `json:"skipped_insufficient_funds"`
	Faulted                  int           `json:"faulted"`
	InitialTotal             int           `json:"initial_total"`
	FinalTotal               int           `json:"final_total"`
	Balances                 []int         `json:"balances"`
	Duration                 time.Duration `json:"duration_ns"`
}

// Mode returns "synchronized" or "unsynchronized".
func (r RunResult) Mode() string {
	return modeLabel(r.Synchronized)
}

// Drift returns FinalTotal - InitialTotal. It is zero when the total was conserved.
func (r RunResult) Drift() int {
	return r.FinalTotal - r.InitialTotal
}

// Conserved reports whether the total balance after the run equals the total before it.
func (r RunResult) Conserved() bool {
	return r.Drift() == 0
}

// CheckConservation returns a wrapped ledger.ErrConservationViolated if the total was not conserved.
func (r RunResult) CheckConservation() error {
	if r.Conserved() {
		return nil
	}

	return fmt.Errorf(
		"%w: %s run %s ended with total %d, expected %d (drift %d)",
		ledger.ErrConservationViolated, r.Mode(), r.RunID, r.FinalTotal, r.InitialTotal, r.Drift(),
	)
}

// TrialSummary aggregates repeated runs of the same configuration.
type TrialSummary struct {
	Synchronized bool `json:"synchronized"`
	Accounts     int  `json:"accounts"`
	Trials       int  `json:"trials"`
	Diverged     int  `json:"diverged"`
	Expected     int  `json:"expected_total"`
	MinTotal     int  `json:"min_total"`
	MaxTotal     int  `json:"max_total"`
	Faulted      int  `json:"faulted"`
}

func newTrialSummary(synchronized bool, accounts, expected int) TrialSummary {
	return TrialSummary{
		Synchronized: synchronized,
		Accounts:     accounts,
		Expected:     expected,
		MinTotal:     math.MaxInt,
		MaxTotal:     math.MinInt,
	}
}

func (s *TrialSummary) add(result RunResult) {
	s.Trials++
	s.Faulted += result.Faulted

	if !result.Conserved() {
		s.Diverged++
	}

	s.MinTotal = min(s.MinTotal, result.FinalTotal)
	s.MaxTotal = max(s.MaxTotal, result.FinalTotal)
}

// Mode returns "synchronized" or "unsynchronized".
func (s TrialSummary) Mode() string {
	return modeLabel(s.Synchronized)
}

// CheckConservation returns a wrapped ledger.ErrConservationViolated if any trial diverged.
func (s TrialSummary) CheckConservation() error {
	if s.Diverged == 0 {
		return nil
	}

	return fmt.Errorf(
		"%w: %d of %d %s trials diverged from total %d (min %d, max %d)",
		ledger.ErrConservationViolated, s.Diverged, s.Trials, s.Mode(), s.Expected, s.MinTotal, s.MaxTotal,
	)
}

// DivergenceRate returns the fraction of trials whose final total differed from Expected.
func (s TrialSummary) DivergenceRate() float64 {
	if s.Trials == 0 {
		return 0
	}

	return float64(s.Diverged) / float64(s.Trials)
}

func modeLabel(synchronized bool) string {
	if synchronized {
		return modeSynchronized
	}

	return modeUnsynchronized
}
