package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrJob    = attribute.Key("billing.job")
	attrStatus = attribute.Key("billing.outcome")
)

// runDurationBuckets are boundaries for whole billing runs (seconds)
var runDurationBuckets = []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900}

// BillingMetrics counts subscription billing outcomes
type BillingMetrics struct {
	cycles  metric.Int64Counter
	charged metric.Float64Counter
	runs    metric.Float64Histogram
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	cycles, err := meter.Int64Counter("billing.cycles",
		metric.WithDescription("Subscription billing cycles processed, by job and outcome"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing.cycles counter: %w", err)
	}
	charged, err := meter.Float64Counter("billing.charged_amount",
		metric.WithDescription("Money captured by subscription billing"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing.charged_amount counter: %w", err)
	}
	runs, err := meter.Float64Histogram("billing.run.duration",
		metric.WithDescription("Duration of scheduled billing runs"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(runDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing.run.duration histogram: %w", err)
	}
	return &BillingMetrics{cycles: cycles, charged: charged, runs: runs}, nil
}

// RecordOutcome counts one processed cycle
func (m *BillingMetrics) RecordOutcome(ctx context.Context, job, status string) {
	m.cycles.Add(ctx, 1, metric.WithAttributes(attrJob.String(job), attrStatus.String(status)))
}

// RecordCharge adds a captured amount
func (m *BillingMetrics) RecordCharge(ctx context.Context, amount decimal.Decimal) {
	m.charged.Add(ctx, amount.InexactFloat64())
}

// RecordRun records how long a batch run took
func (m *BillingMetrics) RecordRun(ctx context.Context, job string, elapsed time.Duration) {
	m.runs.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrJob.String(job)))
}
