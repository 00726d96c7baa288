package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestBillingMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := NewBillingMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOutcome(ctx, "due", "succeeded")
	m.RecordOutcome(ctx, "due", "succeeded")
	m.RecordOutcome(ctx, "retry", "failed")
	m.RecordCharge(ctx, decimal.RequireFromString("59.98"))
	m.RecordRun(ctx, "due", 2*time.Second)

	got := collect(t, reader)

	cycles, ok := got["billing.cycles"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := make(map[string]int64)
	for _, dp := range cycles.DataPoints {
		job, _ := dp.Attributes.Value(attribute.Key("billing.job"))
		status, _ := dp.Attributes.Value(attribute.Key("billing.outcome"))
		counts[job.AsString()+"/"+status.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"due/succeeded": 2, "retry/failed": 1}, counts)

	charged, ok := got["billing.charged_amount"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, charged.DataPoints, 1)
	assert.InDelta(t, 59.98, charged.DataPoints[0].Value, 0.001)

	runs, ok := got["billing.run.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, runs.DataPoints, 1)
	assert.Equal(t, uint64(1), runs.DataPoints[0].Count)
	assert.InDelta(t, 2.0, runs.DataPoints[0].Sum, 0.001)
}

func TestProviders_DisabledAreNoops(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Enabled: true, MetricsEnabled: false, LogsEnabled: false}

	mp, err := NewMeterProvider(ctx, cfg, time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("billing"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Nil(t, lp.Provider())
	assert.NoError(t, lp.Shutdown(ctx))
}
