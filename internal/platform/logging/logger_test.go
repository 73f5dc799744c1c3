package logging

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Info("feed fetched", "match_id", int64(3788741), "events", 3512)
	logger.WarnContext(context.Background(), "retrying", "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3788741), fields["match_id"])
	assert.EqualValues(t, 3512, fields["events"])

	warnFields := entries[1].ContextMap()
	assert.Equal(t, "boom", warnFields["error"])
	assert.NotContains(t, warnFields, "trace_id")
}

func TestLogger_OddArgsAndLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core)).Named("cli")

	logger.Debug("hidden")
	logger.Error("dangling", "only-key")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "cli", entries[0].LoggerName)
	assert.Contains(t, entries[0].ContextMap(), "only-key")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("nil receiver")
		_ = logger.Sync()
		_ = logger.With("k", "v")
	})
}

func TestSetMirror_ReceivesContextEntries(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.InfoContext(context.Background(), "match analysed", "match_id", 1)
	logger.DebugContext(context.Background(), "below level")
	logger.Info("plain entries are not mirrored")

	assert.Equal(t, []string{"info:match analysed"}, got)
}

type season struct{ competition, season int }

func (s season) String() string { return strconv.Itoa(s.competition) + ":" + strconv.Itoa(s.season) }

func TestLogger_StringerAndPositionalKeys(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Info("overview built", "season", season{37, 90}, 12, "teams")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "37:90", fields["season"])
	assert.Equal(t, "teams", fields["arg_1"])
}
