package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	assert.True(t, shouldSkipUptraceLog("http request", []any{"method", "GET", "path", "/healthz"}))
	assert.True(t, shouldSkipUptraceLog("http request", []any{"path", "/static/style.css"}))
	assert.False(t, shouldSkipUptraceLog("http request", []any{"path", "/v1/matches/3773386/analysis"}))
	assert.False(t, shouldSkipUptraceLog("http request", []any{"path", "/healthzz"}))
	assert.False(t, shouldSkipUptraceLog("statsbomb request failed", []any{"path", "/healthz"}))
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"profile", playerprofile.Defenders, 7, int64(3788741), "payload"})
	require.Len(t, attrs, 3)

	assert.Equal(t, "profile", attrs[0].Key)
	assert.Equal(t, "defenders", attrs[0].Value.AsString())
	assert.Equal(t, "arg_1", attrs[1].Key)
	assert.Equal(t, int64(3788741), attrs[1].Value.AsInt64())
	assert.Equal(t, "payload", attrs[2].Key)
	assert.Equal(t, otellog.KindEmpty, attrs[2].Value.Kind())
}

func TestToOTelLogValue(t *testing.T) {
	assert.Equal(t, "boom", toOTelLogValue(errors.New("boom")).AsString())
	assert.Equal(t, "1.5s", toOTelLogValue(1500*time.Millisecond).AsString())
	assert.Equal(t, 0.25, toOTelLogValue(0.25).AsFloat64())
	assert.Equal(t, otellog.KindEmpty, toOTelLogValue(nil).Kind())

	metrics := toOTelLogValue([]string{"clearances", "interceptions"})
	require.Equal(t, otellog.KindSlice, metrics.Kind())
	assert.Len(t, metrics.AsSlice(), 2)
}

func TestToOTelSeverity(t *testing.T) {
	assert.Equal(t, otellog.SeverityDebug, toOTelSeverity(zapcore.DebugLevel))
	assert.Equal(t, otellog.SeverityWarn, toOTelSeverity(zapcore.WarnLevel))
	assert.Equal(t, otellog.SeverityError, toOTelSeverity(zapcore.ErrorLevel))
	assert.Equal(t, otellog.SeverityFatal, toOTelSeverity(zapcore.PanicLevel))
}
