package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger/oteladapters"
)

// recordingLogger is an OpenTelemetry log.Logger keeping every emitted record.
type recordingLogger struct {
	embedded.Logger
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record)
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_NewSlogBridgeLogger_Construction(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("test")
	assert.NotNil(t, logger, "NewSlogBridgeLogger should return non-nil logger")

	// the global provider is a no-op by default, logging must not panic
	logger.InfoContext(context.Background(), "simulation run completed", "applied", 3)
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// setup
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")
	logger.Debug("plain debug message")
	logger.Info("plain info message")
	logger.Warn("plain warn message")
	logger.Error("plain error message")

	// assert
	output := buf.String()
	for _, msg := range []string{
		"debug message", "info message", "warn message", "error message",
		"plain debug message", "plain info message", "plain warn message", "plain error message",
	} {
		assert.Contains(t, output, msg, "%s should be logged", msg)
	}

	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
}

func Test_SlogBridgeLogger_WithAttributes(t *testing.T) {
	// setup
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	// act
	logger.InfoContext(context.Background(), "simulation run completed", "run_id", "abc", "final_total", 5000)

	// assert
	output := buf.String()
	assert.Contains(t, output, `"run_id":"abc"`)
	assert.Contains(t, output, `"final_total":5000`)
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	// setup
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.ErrorContext(
		context.Background(),
		"transfer attempt failed",
		"error", errors.New("account index out of range"),
		"from", 7,
		"synchronized", true,
		"duration_ms", 1.5,
		"seed", uint64(42),
		"elapsed", 2*time.Millisecond,
	)

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityError, record.Severity())
	assert.Equal(t, "transfer attempt failed", record.Body().AsString())
	assert.False(t, record.Timestamp().IsZero(), "record should carry a timestamp")

	attrs := attributesOf(record)
	assert.Equal(t, "account index out of range", attrs["error"].AsString())
	assert.Equal(t, int64(7), attrs["from"].AsInt64())
	assert.True(t, attrs["synchronized"].AsBool())
	assert.InDelta(t, 1.5, attrs["duration_ms"].AsFloat64(), 0)
	assert.Equal(t, int64(42), attrs["seed"].AsInt64())
	assert.Equal(t, int64(2*time.Millisecond), attrs["elapsed"].AsInt64())
}

func Test_OTelLogger_AllLevels(t *testing.T) {
	// setup
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug")
	logger.InfoContext(ctx, "info")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, "error")

	// assert
	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
}

func Test_OTelLogger_WithNoopLogger(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "simulation run completed", "applied", 3)
	})
}

func Test_KeyValues_DropsMalformedPairs(t *testing.T) {
	// act
	attrs := oteladapters.KeyValues("run_id", "abc", 42, "ignored", "dangling")

	// assert
	require.Len(t, attrs, 1, "non-string keys and dangling keys should be dropped")
	assert.Equal(t, "run_id", attrs[0].Key)
	assert.Equal(t, "abc", attrs[0].Value.AsString())
}
