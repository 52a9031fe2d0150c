// Package faultlog writes the append-only text log of operational events and faulted transfer attempts.
//
// The log is truncated when it is opened and starts with a "log start" line. Every following entry is one
// tab separated line: timestamp, level, message and the structured context of the entry.
package faultlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

// TimeLayout is the timestamp layout of every line in the log.
const TimeLayout = "2006-01-02 15:04:05.000"

// Log is a fault log. It implements ledger.Logger and ledger.FaultReporter and is safe for concurrent use.
type Log struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	closer io.Closer
	once   sync.Once
}

// Option configures a Log.
type Option func(*options)

type options struct {
	level zapcore.Level
	clock zapcore.Clock
}

// WithLevel sets the minimum level written to the log (default info).
func WithLevel(level zapcore.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithClock sets the clock for entry and header timestamps.
func WithClock(clock zapcore.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// Open truncates or creates the file at path and starts a new log in it.
func Open(path string, opts ...Option) (*Log, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("opening fault log: %w", err)
	}

	l, err := New(file, opts...)
	if err != nil {
		return nil, multierr.Append(err, file.Close())
	}

	l.closer = file

	return l, nil
}

// New starts a new log on w. Close does not close w.
func New(w io.Writer, opts ...Option) (*Log, error) {
	o := options{level: zapcore.InfoLevel, clock: zapcore.DefaultClock}
	for _, opt := range opts {
		opt(&o)
	}

	sink := zapcore.Lock(zapcore.AddSync(w))

	if _, err := fmt.Fprintf(sink, "log start: %s\n", o.clock.Now().Format(TimeLayout)); err != nil {
		return nil, fmt.Errorf("writing fault log header: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: "\t",
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, o.level)
	logger := zap.New(core, zap.WithClock(o.clock), zap.ErrorOutput(zapcore.AddSync(io.Discard)))

	return &Log{logger: logger, sugar: logger.Sugar()}, nil
}

// Debug writes a debug entry with slog style key/value pairs.
func (l *Log) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Info writes an info entry with slog style key/value pairs.
func (l *Log) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

// Warn writes a warning entry with slog style key/value pairs.
func (l *Log) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

// Error writes an error entry with slog style key/value pairs.
func (l *Log) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// ReportFault writes one faulted attempt as an error entry. at is the moment the attempt faulted, which can be
// earlier than the entry's own timestamp because faults are reported asynchronously.
func (l *Log) ReportFault(at time.Time, message string, detail error) {
	l.logger.Error(message, zap.String("at", at.Format(TimeLayout)), zap.Error(detail))
}

// Record writes an error entry for a failure outside of a simulation run, for example a failed startup check.
func (l *Log) Record(message string, err error) {
	l.logger.Error(message, zap.Error(err))
}

// Close flushes the log and closes the file opened by Open. It is safe to call Close more than once.
func (l *Log) Close() error {
	var err error

	l.once.Do(func() {
		err = l.logger.Sync()

		if l.closer != nil {
			err = multierr.Append(err, l.closer.Close())
		}
	})

	return err
}

var (
	_ ledger.Logger        = (*Log)(nil)
	_ ledger.FaultReporter = (*Log)(nil)
)
