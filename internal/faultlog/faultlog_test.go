package faultlog_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/faultlog"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

var fakeNow = time.Date(2024, 5, 17, 13, 45, 10, 0, time.UTC)

func Test_New_WritesLogStartHeader(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	l, err := faultlog.New(&buf, faultlog.WithClock(fixedClock{now: fakeNow}))

	// assert
	require.NoError(t, err)
	require.NoError(t, l.Close())
	assert.Equal(t, "log start: 2024-05-17 13:45:10.000\n", buf.String())
}

func Test_ReportFault_WritesErrorEntry(t *testing.T) {
	// setup
	var buf bytes.Buffer
	l, err := faultlog.New(&buf, faultlog.WithClock(fixedClock{now: fakeNow}))
	require.NoError(t, err)

	// act
	l.ReportFault(
		fakeNow.Add(-time.Millisecond),
		"transfer attempt 3 failed: amount 10 from account 0 to account 7",
		errors.New("account index out of range"),
	)
	require.NoError(t, l.Close())

	// assert
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "header plus one entry")

	fields := strings.Split(lines[1], "\t")
	require.GreaterOrEqual(t, len(fields), 4)
	assert.Equal(t, "2024-05-17 13:45:10.000", fields[0])
	assert.Equal(t, "ERROR", fields[1])
	assert.Equal(t, "transfer attempt 3 failed: amount 10 from account 0 to account 7", fields[2])
	assert.Contains(t, fields[3], `"at": "2024-05-17 13:45:09.999"`)
	assert.Contains(t, fields[3], `"error": "account index out of range"`)
}

func Test_Logger_WritesKeyValuePairs(t *testing.T) {
	// setup
	var buf bytes.Buffer
	l, err := faultlog.New(&buf)
	require.NoError(t, err)

	// act
	l.Info("invalid user input", "input", "abc")
	l.Warn("total balance drifted during run", "drift", -130)
	l.Error("simulation run aborted", "error", "context canceled")
	require.NoError(t, l.Close())

	// assert
	output := buf.String()
	assert.Contains(t, output, "INFO\tinvalid user input\t{\"input\": \"abc\"}")
	assert.Contains(t, output, "WARN\ttotal balance drifted during run\t{\"drift\": -130}")
	assert.Contains(t, output, "ERROR\tsimulation run aborted\t{\"error\": \"context canceled\"}")
}

func Test_Logger_SkipsEntriesBelowLevel(t *testing.T) {
	// setup
	var buf bytes.Buffer
	l, err := faultlog.New(&buf, faultlog.WithLevel(zapcore.WarnLevel))
	require.NoError(t, err)

	// act
	l.Debug("simulation run started")
	l.Info("simulation run completed")
	l.Warn("total balance drifted during run")
	require.NoError(t, l.Close())

	// assert
	output := buf.String()
	assert.NotContains(t, output, "simulation run started")
	assert.NotContains(t, output, "simulation run completed")
	assert.Contains(t, output, "total balance drifted during run")
}

func Test_Open_TruncatesExistingFile(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content from an earlier run\n"), 0o600))

	// act
	l, err := faultlog.Open(path)
	require.NoError(t, err)
	l.Record("not enough free disk space", errors.New("insufficient disk space"))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "closing twice should be harmless")

	// assert
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale content")
	assert.True(t, strings.HasPrefix(string(content), "log start: "))
	assert.Contains(t, string(content), "not enough free disk space")
}

func Test_Open_ShouldFail_WhenDirectoryIsMissing(t *testing.T) {
	// act
	_, err := faultlog.Open(filepath.Join(t.TempDir(), "missing", "log.txt"))

	// assert
	assert.ErrorContains(t, err, "opening fault log")
}
