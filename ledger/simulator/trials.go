package simulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

// ErrInvalidTrialCount is returned when Trials is asked for a non-positive number of trials.
var ErrInvalidTrialCount = errors.New("trial count must be positive")

// Trials repeats Run trials times on a ledger of accounts accounts that is reset to initialBalance before
// every trial and summarizes how often the final total diverged from the initial one.
//
// The first aborted run stops the trials. The summary of the trials finished so far is returned with the error.
func (s *Simulator) Trials(
	ctx context.Context,
	accounts int,
	initialBalance int,
	trials int,
	synchronized bool,
) (TrialSummary, error) {
	if trials <= 0 {
		return TrialSummary{}, ErrInvalidTrialCount
	}

	l, err := ledger.New(accounts, initialBalance)
	if err != nil {
		return TrialSummary{}, err
	}

	summary := newTrialSummary(synchronized, accounts, l.InitialTotal())

	for trial := range trials {
		l.Reset()

		result, runErr := s.Run(ctx, l, synchronized)
		if runErr != nil {
			return summary, fmt.Errorf("trial %d of %d: %w", trial+1, trials, runErr)
		}

		summary.add(result)
	}

	return summary, nil
}
