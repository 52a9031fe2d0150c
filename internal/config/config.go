// Package config loads the transfer simulator settings from a YAML file and TRANSFERSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the transfersim command.
type Config struct {
	// Accounts is the number of accounts. Zero means ask on the terminal.
	Accounts int `json:"accounts" yaml:"accounts"`

	// InitialBalance is the starting balance of every account. Zero means ask on the terminal.
	InitialBalance int `json:"initial_balance" yaml:"initial_balance"`

	// Transactions is the number of transfer attempts per run.
	Transactions int `json:"transactions" yaml:"transactions"`

	// Workers is the size of the worker pool. Zero means one worker per available CPU.
	Workers int `json:"workers" yaml:"workers"`

	// Trials is the number of repetitions for the trials command.
	Trials int `json:"trials" yaml:"trials"`

	// Seed seeds the instruction generators. Zero means a fresh random seed per run.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// RunTimeout bounds a single run. Zero disables the timeout.
	RunTimeout time.Duration `json:"run_timeout,omitempty" yaml:"run_timeout,omitempty"`

	// LogFile is the fault log, truncated on every start.
	LogFile string `json:"log_file" yaml:"log_file"`

	// MinFreeDiskMB is the free space the volume holding LogFile must offer before anything runs.
	MinFreeDiskMB uint64 `json:"min_free_disk_mb" yaml:"min_free_disk_mb"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`

	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// LoggingConfig controls the console log.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level" yaml:"level"`
}

// ObservabilityConfig controls the OpenTelemetry pipeline.
type ObservabilityConfig struct {
	// Enabled wires metrics, tracing and log correlation into the simulator.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ServiceName names the instrumentation scope.
	ServiceName string `json:"service_name" yaml:"service_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Transactions:  10000,
		Trials:        100,
		LogFile:       "log.txt",
		MinFreeDiskMB: 10,
		Logging: LoggingConfig{
			Level: "info",
		},
		Observability: ObservabilityConfig{
			Enabled:     false,
			ServiceName: "transfersim",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides settings from TRANSFERSIM_* environment variables.
func (c *Config) ApplyEnv() error {
	ints := map[string]*int{
		"TRANSFERSIM_ACCOUNTS":        &c.Accounts,
		"TRANSFERSIM_INITIAL_BALANCE": &c.InitialBalance,
		"TRANSFERSIM_TRANSACTIONS":    &c.Transactions,
		"TRANSFERSIM_WORKERS":         &c.Workers,
		"TRANSFERSIM_TRIALS":          &c.Trials,
	}

	for name, target := range ints {
		if v, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			*target = n
		}
	}

	if v, ok := os.LookupEnv("TRANSFERSIM_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TRANSFERSIM_SEED: %w", err)
		}

		c.Seed = seed
	}

	if v, ok := os.LookupEnv("TRANSFERSIM_RUN_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRANSFERSIM_RUN_TIMEOUT: %w", err)
		}

		c.RunTimeout = timeout
	}

	if v, ok := os.LookupEnv("TRANSFERSIM_MIN_FREE_DISK_MB"); ok {
		mb, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TRANSFERSIM_MIN_FREE_DISK_MB: %w", err)
		}

		c.MinFreeDiskMB = mb
	}

	if v, ok := os.LookupEnv("TRANSFERSIM_LOG_FILE"); ok && v != "" {
		c.LogFile = v
	}

	if v, ok := os.LookupEnv("TRANSFERSIM_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}

	if v, ok := os.LookupEnv("TRANSFERSIM_OBSERVABILITY_ENABLED"); ok {
		c.Observability.Enabled = v == "true" || v == "1"
	}

	if v, ok := os.LookupEnv("TRANSFERSIM_SERVICE_NAME"); ok && v != "" {
		c.Observability.ServiceName = v
	}

	return nil
}

// Validate checks the settings for values no command can work with.
// Zero accounts and zero initial balance are valid, the command asks for them.
func (c *Config) Validate() error {
	if c.Accounts < 0 {
		return fmt.Errorf("accounts must not be negative, got %d", c.Accounts)
	}

	if c.InitialBalance < 0 {
		return fmt.Errorf("initial_balance must not be negative, got %d", c.InitialBalance)
	}

	if c.Transactions <= 0 {
		return fmt.Errorf("transactions must be positive, got %d", c.Transactions)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}

	if c.RunTimeout < 0 {
		return fmt.Errorf("run_timeout must not be negative, got %v", c.RunTimeout)
	}

	if c.LogFile == "" {
		return errors.New("log_file must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}
