package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricReducerDuration    = "fozzy.reducer.duration.seconds"
	metricBundleDerivations  = "fozzy.bundle.derivations.total"
	metricShrinkAttempts     = "fozzy.shrink.attempts.total"
	metricMemoryAllocations  = "fozzy.memory.allocations.total"
	metricMemoryRejected     = "fozzy.memory.allocations.rejected.total"

	attrReducer = "reducer"
	attrOutcome = "outcome"
)

// durationBucketBoundaries covers 1ms to 60s, the range expected for
// deriving a profile bundle from an in-memory trace.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// ReducerMetrics holds the OTel instruments recorded around each pipeline stage.
type ReducerMetrics struct {
	reducerDuration   metric.Float64Histogram
	bundleDerivations metric.Int64Counter
	shrinkAttempts    metric.Int64Counter
	memoryAllocations metric.Int64Counter
	memoryRejected    metric.Int64Counter
}

// NewReducerMetrics creates the pipeline instrument set from the given meter.
func NewReducerMetrics(mt metric.Meter) (*ReducerMetrics, error) {
	reducerDuration, err := mt.Float64Histogram(metricReducerDuration,
		metric.WithDescription("Duration of a single reducer pass over a trace"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReducerDuration, err)
	}

	bundleDerivations, err := mt.Int64Counter(metricBundleDerivations,
		metric.WithDescription("Total number of profile bundle derivations"),
		metric.WithUnit("{derivation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBundleDerivations, err)
	}

	shrinkAttempts, err := mt.Int64Counter(metricShrinkAttempts,
		metric.WithDescription("Total number of shrink attempts, tagged by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricShrinkAttempts, err)
	}

	memoryAllocations, err := mt.Int64Counter(metricMemoryAllocations,
		metric.WithDescription("Total number of memory capability allocations processed"),
		metric.WithUnit("{allocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMemoryAllocations, err)
	}

	memoryRejected, err := mt.Int64Counter(metricMemoryRejected,
		metric.WithDescription("Total number of memory capability allocations rejected"),
		metric.WithUnit("{allocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMemoryRejected, err)
	}

	return &ReducerMetrics{
		reducerDuration:   reducerDuration,
		bundleDerivations: bundleDerivations,
		shrinkAttempts:    shrinkAttempts,
		memoryAllocations: memoryAllocations,
		memoryRejected:    memoryRejected,
	}, nil
}

// RecordReducer records one reducer pass's wall-clock duration.
func (rm *ReducerMetrics) RecordReducer(ctx context.Context, reducer string, dur time.Duration) {
	rm.reducerDuration.Record(ctx, dur.Seconds(), metric.WithAttributes(
		attribute.String(attrReducer, reducer),
	))
}

// RecordBundleDerivation increments the bundle-derivation counter.
func (rm *ReducerMetrics) RecordBundleDerivation(ctx context.Context) {
	rm.bundleDerivations.Add(ctx, 1)
}

// RecordShrinkAttempt increments the shrink-attempt counter tagged by outcome
// ("shrunk", "no_progress", "contract_violated", "error").
func (rm *ReducerMetrics) RecordShrinkAttempt(ctx context.Context, outcome string) {
	rm.shrinkAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}

// RecordAllocation increments the allocation counters, tagging rejected
// allocations separately from accepted ones.
func (rm *ReducerMetrics) RecordAllocation(ctx context.Context, accepted bool) {
	rm.memoryAllocations.Add(ctx, 1)

	if !accepted {
		rm.memoryRejected.Add(ctx, 1)
	}
}
