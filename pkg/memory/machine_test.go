package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ariacomputecompany/fozzy/internal/telemetry"
	"github.com/ariacomputecompany/fozzy/pkg/memory"
)

func uint64p(v uint64) *uint64 { return &v }

func strp(v string) *string { return &v }

func TestAllocFreeRoundTrip(t *testing.T) {
	t.Parallel()

	st := memory.NewState(memory.Options{})
	outcome := st.Allocate(64, strp("hot"), "site", 4)
	require.NotNil(t, outcome.AllocID)
	assert.Equal(t, uint64(1), *outcome.AllocID)

	ok := st.Free(*outcome.AllocID, 8)
	require.True(t, ok)

	report := st.Finalize()
	assert.Equal(t, memory.Summary{
		AllocCount:       1,
		FreeCount:        1,
		FailedAllocCount: 0,
		InUseBytes:       0,
		PeakBytes:        64,
		LeakedBytes:      0,
		LeakedAllocs:     0,
	}, report.Summary)
	assert.Len(t, report.Graph.Nodes, 3)
	assert.Len(t, report.Graph.Edges, 2)
}

func TestLimitRejection(t *testing.T) {
	t.Parallel()

	st := memory.NewState(memory.Options{LimitMb: uint64p(1)})

	first := st.Allocate(1<<20, nil, "site", 1)
	require.NotNil(t, first.AllocID)

	second := st.Allocate(1<<20, nil, "site", 2)
	assert.Nil(t, second.AllocID)
	assert.Equal(t, "limit_mb", second.FailedReason)

	report := st.Finalize()
	assert.Equal(t, uint64(1), report.Summary.FailedAllocCount)
	assert.Equal(t, uint64(1<<20), report.Summary.InUseBytes)
}

func TestPressureWaveDoubling(t *testing.T) {
	t.Parallel()

	st := memory.NewState(memory.Options{PressureWave: "1,2"})

	outcomes := make([]uint64, 0, 3)
	for range 3 {
		o := st.Allocate(100, nil, "site", 0)
		require.NotNil(t, o.AllocID)
		outcomes = append(outcomes, st.InUseBytes())
	}

	assert.Equal(t, uint64(100), outcomes[0])
	assert.Equal(t, uint64(300), outcomes[1])
	assert.Equal(t, uint64(400), outcomes[2])

	report := st.Finalize()
	assert.Equal(t, uint64(400), report.Summary.PeakBytes)
}

func TestFreeMissingReturnsFalse(t *testing.T) {
	t.Parallel()

	st := memory.NewState(memory.Options{})
	assert.False(t, st.Free(99, 0))
}

func TestAttachMetricsRecordsAcceptedAndRejected(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rm, err := telemetry.NewReducerMetrics(mp.Meter("test"))
	require.NoError(t, err)

	st := memory.NewState(memory.Options{LimitMb: uint64p(1)})
	st.AttachMetrics(context.Background(), rm)

	first := st.Allocate(1<<20, nil, "site", 1)
	require.NotNil(t, first.AllocID)

	second := st.Allocate(1<<20, nil, "site", 2)
	assert.Nil(t, second.AllocID)

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &data))

	var allocations, rejected *metricdata.Metrics

	for idx := range data.ScopeMetrics {
		for midx := range data.ScopeMetrics[idx].Metrics {
			switch data.ScopeMetrics[idx].Metrics[midx].Name {
			case "fozzy.memory.allocations.total":
				allocations = &data.ScopeMetrics[idx].Metrics[midx]
			case "fozzy.memory.allocations.rejected.total":
				rejected = &data.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	require.NotNil(t, allocations)
	require.NotNil(t, rejected)

	allocSum, ok := allocations.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, allocSum.DataPoints, 1)
	assert.Equal(t, int64(2), allocSum.DataPoints[0].Value)

	rejectedSum, ok := rejected.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rejectedSum.DataPoints, 1)
	assert.Equal(t, int64(1), rejectedSum.DataPoints[0].Value)
}
