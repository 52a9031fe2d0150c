package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/config"
	"github.com/AntonStoeckl/concurrent-transfers-go/internal/diskcheck"
	"github.com/AntonStoeckl/concurrent-transfers-go/internal/faultlog"
	"github.com/AntonStoeckl/concurrent-transfers-go/internal/prompt"
	"github.com/AntonStoeckl/concurrent-transfers-go/internal/report"
	"github.com/AntonStoeckl/concurrent-transfers-go/internal/telemetry"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/oteladapters"
	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/simulator"
)

const (
	msgDiskCheckFailed      = "not enough free disk space"
	msgReadInputFailed      = "reading user input failed"
	msgSimulationFailed     = "simulation failed"
	msgConservationViolated = "synchronized run did not conserve the total balance"
	msgReportFailed         = "writing report failed"

	questionAccounts       = "Enter the number of accounts (positive integer):"
	questionInitialBalance = "Enter the initial balance of every account (positive integer):"

	shutdownTimeout = 5 * time.Second
)

// app holds everything a simulating command needs between setup and close.
type app struct {
	cfg        *config.Config
	in         *bufio.Reader
	out        io.Writer
	jsonOut    bool
	metricsOut bool
	console    *slog.Logger
	faultLog   *faultlog.Log
	telemetry  *telemetry.Providers
}

// newApp loads the configuration, runs the disk check and opens the fault log.
// Configuration precedence is flags over TRANSFERSIM_* environment variables over the config file.
func newApp(cmd *cobra.Command, in io.Reader, out io.Writer) (*app, error) {
	configPath, _ := cmd.Flags().GetString(flagConfig)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{
		cfg:     cfg,
		in:      bufio.NewReader(in),
		out:     out,
		console: newConsoleLogger(cmd.ErrOrStderr(), cfg.Logging.Level),
	}
	a.jsonOut, _ = cmd.Flags().GetBool(flagJSON)
	a.metricsOut, _ = cmd.Flags().GetBool(flagMetrics)

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if diskErr := diskcheck.EnsureFreeSpace(filepath.Dir(cfg.LogFile), diskcheck.Bytes(cfg.MinFreeDiskMB)); diskErr != nil {
		if faultLog, openErr := faultlog.Open(cfg.LogFile, faultlog.WithLevel(level)); openErr == nil {
			faultLog.Record(msgDiskCheckFailed, diskErr)
			diskErr = multierr.Append(diskErr, faultLog.Close())
		}

		return nil, fmt.Errorf("%s: %w", msgDiskCheckFailed, diskErr)
	}

	a.faultLog, err = faultlog.Open(cfg.LogFile, faultlog.WithLevel(level))
	if err != nil {
		return nil, err
	}

	if cfg.Observability.Enabled || a.metricsOut {
		a.telemetry = telemetry.New(cfg.Observability.ServiceName)
		a.telemetry.Install()
	}

	return a, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	ints := map[string]*int{
		flagAccounts:     &cfg.Accounts,
		flagBalance:      &cfg.InitialBalance,
		flagTransactions: &cfg.Transactions,
		flagWorkers:      &cfg.Workers,
		flagTrials:       &cfg.Trials,
	}

	for name, target := range ints {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}

		value, err := flags.GetInt(name)
		if err != nil {
			return err
		}

		*target = value
	}

	if flags.Changed(flagSeed) {
		seed, err := flags.GetUint64(flagSeed)
		if err != nil {
			return err
		}

		cfg.Seed = seed
	}

	if flags.Changed(flagTimeout) {
		timeout, err := flags.GetDuration(flagTimeout)
		if err != nil {
			return err
		}

		cfg.RunTimeout = timeout
	}

	return nil
}

func newConsoleLogger(out io.Writer, level string) *slog.Logger {
	ptermLevel := pterm.LogLevelInfo

	switch level {
	case "debug":
		ptermLevel = pterm.LogLevelDebug
	case "warn":
		ptermLevel = pterm.LogLevelWarn
	case "error":
		ptermLevel = pterm.LogLevelError
	}

	logger := pterm.DefaultLogger.WithWriter(out).WithLevel(ptermLevel)

	return slog.New(pterm.NewSlogHandler(logger))
}

// newSimulator wires the configuration, the fault log, the console and the telemetry into a Simulator.
func (a *app) newSimulator() (*simulator.Simulator, error) {
	options := []simulator.Option{
		simulator.WithTransactionCount(a.cfg.Transactions),
		simulator.WithFaultReporter(a.faultLog),
		simulator.WithLogger(a.faultLog),
		simulator.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler(a.console.Handler())),
	}

	if a.cfg.Workers > 0 {
		options = append(options, simulator.WithWorkers(a.cfg.Workers))
	}

	if a.cfg.Seed != 0 {
		options = append(options, simulator.WithSeed(a.cfg.Seed))
	}

	if a.cfg.RunTimeout > 0 {
		options = append(options, simulator.WithRunTimeout(a.cfg.RunTimeout))
	}

	if a.telemetry != nil {
		options = append(options,
			simulator.WithMetrics(oteladapters.NewMetricsCollector(a.telemetry.Meter())),
			simulator.WithTracing(oteladapters.NewTracingCollector(a.telemetry.Tracer())),
		)
	}

	return simulator.NewSimulator(options...)
}

// ledgerSize returns the configured account count and initial balance and asks for whatever is missing.
func (a *app) ledgerSize() (int, int, error) {
	accounts, initialBalance := a.cfg.Accounts, a.cfg.InitialBalance

	var err error

	if accounts == 0 {
		if accounts, err = prompt.Ask(a.in, a.out, a.faultLog, questionAccounts); err != nil {
			return 0, 0, a.fail(msgReadInputFailed, err)
		}
	}

	if initialBalance == 0 {
		if initialBalance, err = prompt.Ask(a.in, a.out, a.faultLog, questionInitialBalance); err != nil {
			return 0, 0, a.fail(msgReadInputFailed, err)
		}
	}

	return accounts, initialBalance, nil
}

// snapshot returns the collected telemetry when --metrics was given.
func (a *app) snapshot(ctx context.Context) (*telemetry.Snapshot, error) {
	if !a.metricsOut || a.telemetry == nil {
		return nil, nil
	}

	snapshot, err := a.telemetry.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// printSnapshot prints the collected telemetry in text mode.
func (a *app) printSnapshot(snapshot *telemetry.Snapshot) error {
	if snapshot == nil {
		return nil
	}

	pterm.Fprintln(a.out, pterm.LightCyan("Telemetry"))

	return report.JSON(a.out, snapshot)
}

// fail records err in the fault log and returns it with a pointer to the log file.
func (a *app) fail(message string, err error) error {
	a.faultLog.Record(message, err)

	return fmt.Errorf("%s (details in %s): %w", message, a.cfg.LogFile, err)
}

// close flushes the fault log and shuts the telemetry down.
func (a *app) close() error {
	var err error

	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err = a.telemetry.Shutdown(ctx)
	}

	return multierr.Append(err, a.faultLog.Close())
}
