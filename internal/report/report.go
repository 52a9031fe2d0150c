// Package report renders simulation results on the terminal and as JSON.
package report

import (
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/pterm/pterm"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/simulator"
)

// Balances renders the final balances of one run, every account as "Account i" counted from 1,
// followed by the total and whether it was conserved.
func Balances(w io.Writer, title string, result simulator.RunResult) error {
	data := make(pterm.TableData, 0, len(result.Balances)+1)
	data = append(data, []string{"Account", "Balance"})

	for i, balance := range result.Balances {
		data = append(data, []string{"Account " + strconv.Itoa(i+1), strconv.Itoa(balance)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("rendering balances: %w", err)
	}

	pterm.Fprintln(w, pterm.LightCyan(title))
	pterm.Fprintln(w, table)
	pterm.Fprintln(w, fmt.Sprintf("Total balance: %d", result.FinalTotal))
	pterm.Fprintln(w, fmt.Sprintf(
		"Attempts: %d (applied %d, skipped self %d, skipped insufficient funds %d, faulted %d) in %s",
		result.Attempts, result.Applied, result.SkippedSelf, result.SkippedInsufficientFunds, result.Faulted,
		result.Duration,
	))

	if result.Conserved() {
		pterm.Fprintln(w, pterm.Success.Sprintf("Total conserved at %d", result.InitialTotal))
	} else {
		pterm.Fprintln(w, pterm.Warning.Sprintf(
			"Total drifted by %+d (expected %d, got %d)", result.Drift(), result.InitialTotal, result.FinalTotal,
		))
	}

	return nil
}

// Trials renders one row per trial summary.
func Trials(w io.Writer, summaries ...simulator.TrialSummary) error {
	data := pterm.TableData{
		{"Mode", "Trials", "Diverged", "Divergence rate", "Expected", "Min total", "Max total", "Faulted"},
	}

	for _, s := range summaries {
		data = append(data, []string{
			s.Mode(),
			strconv.Itoa(s.Trials),
			strconv.Itoa(s.Diverged),
			fmt.Sprintf("%.1f%%", s.DivergenceRate()*100),
			strconv.Itoa(s.Expected),
			strconv.Itoa(s.MinTotal),
			strconv.Itoa(s.MaxTotal),
			strconv.Itoa(s.Faulted),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("rendering trials: %w", err)
	}

	pterm.Fprintln(w, table)

	return nil
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}

	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}

	return nil
}
