package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONIncludesServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf, ServiceName: "svc"})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.WithContext(ctx).Info().Str("file", "a.pdf").Msg("accepted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "svc", entry["service"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "a.pdf", entry["file"])
	assert.Equal(t, "accepted", entry["message"])
}

func TestLogger_WithAddsFieldsToChild(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf, ServiceName: "svc"})

	child := parent.With().Str("language", "eng").Int("dpi", 72).Logger()
	child.Info().Msgf("rendered %d pages", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "svc", entry["service"])
	assert.Equal(t, "eng", entry["language"])
	assert.Equal(t, 72.0, entry["dpi"])
	assert.Equal(t, "rendered 2 pages", entry["message"])

	buf.Reset()
	parent.Info().Msg("plain")
	assert.NotContains(t, buf.String(), "language")
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "info", parseLevel("bogus").String())
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("/extract", "200")
	m.ObserveRequest("/extract", "200")
	m.StageFailed(StageText, "ocr")
	m.PageRecognized()
	m.TablesDetected(3)
	m.ObserveStage(StageTables, 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/extract", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageFailures.WithLabelValues(StageText, "ocr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pagesOCR))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tablesDetected))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", "200")
		m.ObserveStage(StageText, time.Second)
		m.StageFailed(StageText, "ocr")
		m.PageRecognized()
		m.TablesDetected(1)
	})
}
