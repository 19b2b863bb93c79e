package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    "loteriadash-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		SampleRatio:    1.0,
	}

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "no exporter means no SDK tracer provider")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitializationTwice(t *testing.T) {
	for i := 0; i < 2; i++ {
		providers, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "none", EnableMetrics: true}, testLogger())
		require.NoError(t, err)
		require.NoError(t, providers.Shutdown(context.Background()))
	}
}

func TestUnsupportedTraceExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "zipkin"}, testLogger())
	assert.Error(t, err)
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "stdout", SampleRatio: 1}, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "load-dataset")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	RecordError(ctx, errors.New("boom"))
}

func TestBusinessMetricsExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "none", EnableMetrics: true}, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetLoad(ctx, metrics, "csv", 20*time.Millisecond, 10, map[string]int{"invalid_date": 2, "non_numeric": 0}, nil)
	RecordCacheAccess(ctx, metrics, true)
	RecordCacheAccess(ctx, metrics, false)
	RecordNarrativeCall(ctx, metrics, "ask", time.Second, errors.New("timeout"))
	RecordChartRender(ctx, metrics, "parity", "png", nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "dataset_loads_total")
	assert.Contains(t, body, "dataset_rows_dropped_total")
	assert.Contains(t, body, `reason="invalid_date"`)
	assert.NotContains(t, body, `reason="non_numeric"`)
	assert.Contains(t, body, "narrative_requests_total")
	assert.Contains(t, body, "chart_renders_total")
}

func TestRecordHelpersTolerateNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, "csv", 0, 0, nil, nil)
		RecordCacheAccess(ctx, nil, true)
		RecordNarrativeCall(ctx, nil, "ask", 0, nil)
		RecordChartRender(ctx, nil, "parity", "json", nil)
	})
	assert.NotNil(t, NoopBusinessMetrics())
}
