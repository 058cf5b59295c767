package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ariacomputecompany/fozzy/internal/telemetry"
)

func setupTestMeter(t *testing.T) (*telemetry.ReducerMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	rm, err := telemetry.NewReducerMetrics(meter)
	require.NoError(t, err)

	return rm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestReducerMetrics_RecordReducer(t *testing.T) {
	t.Parallel()

	rm, reader := setupTestMeter(t)
	ctx := context.Background()

	rm.RecordReducer(ctx, "cpu", 5*time.Millisecond)

	data := collectMetrics(t, reader)
	dur := findMetric(data, "fozzy.reducer.duration.seconds")
	require.NotNil(t, dur, "fozzy.reducer.duration.seconds metric not found")
}

func TestReducerMetrics_RecordBundleDerivation(t *testing.T) {
	t.Parallel()

	rm, reader := setupTestMeter(t)
	ctx := context.Background()

	rm.RecordBundleDerivation(ctx)
	rm.RecordBundleDerivation(ctx)

	data := collectMetrics(t, reader)
	derivations := findMetric(data, "fozzy.bundle.derivations.total")
	require.NotNil(t, derivations)

	sum, ok := derivations.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum data type")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestReducerMetrics_RecordShrinkAttempt(t *testing.T) {
	t.Parallel()

	rm, reader := setupTestMeter(t)
	ctx := context.Background()

	rm.RecordShrinkAttempt(ctx, "contract_violated")

	data := collectMetrics(t, reader)
	attempts := findMetric(data, "fozzy.shrink.attempts.total")
	require.NotNil(t, attempts)
}

func TestReducerMetrics_RecordAllocation(t *testing.T) {
	t.Parallel()

	rm, reader := setupTestMeter(t)
	ctx := context.Background()

	rm.RecordAllocation(ctx, true)
	rm.RecordAllocation(ctx, false)

	data := collectMetrics(t, reader)

	allocations := findMetric(data, "fozzy.memory.allocations.total")
	require.NotNil(t, allocations)

	rejected := findMetric(data, "fozzy.memory.allocations.rejected.total")
	require.NotNil(t, rejected)

	rejectedSum, ok := rejected.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rejectedSum.DataPoints, 1)
	assert.Equal(t, int64(1), rejectedSum.DataPoints[0].Value)
}
