package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariacomputecompany/fozzy/pkg/profile"
	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

func tracedEvents(timesMs []uint64, name string) *trace.File {
	events := make([]trace.Event, 0, len(timesMs))
	for _, t := range timesMs {
		events = append(events, trace.Event{TimeMs: t, Name: name, Fields: map[string]any{}})
	}

	return &trace.File{
		Format:  trace.Format,
		Version: trace.CurrentVersion,
		Engine:  trace.Engine{Version: "0.1.0"},
		Mode:    trace.ModeRun,
		Events:  events,
		Summary: trace.RunSummary{Identity: trace.Identity{RunID: "run-1"}},
	}
}

func TestLatencyDistributionMatchesDeltas(t *testing.T) {
	t.Parallel()

	f := tracedEvents([]uint64{1, 4, 8}, "tick")
	timeline := profile.BuildTimeline(f)
	require.Len(t, timeline, 3)

	latency := profile.BuildLatencyProfile(f, timeline)

	assert.Equal(t, uint64(4), latency.Distribution.P50Ms)
	assert.Equal(t, uint64(4), latency.Distribution.P95Ms)
	assert.Equal(t, uint64(4), latency.Distribution.MaxMs)
	require.Len(t, latency.CriticalPath, 2)
	assert.Equal(t, uint64(4), latency.CriticalPath[0].DurationMs)
	assert.Equal(t, uint64(3), latency.CriticalPath[1].DurationMs)
}

func TestPercentileIsMonotonicWithP(t *testing.T) {
	t.Parallel()

	f := tracedEvents([]uint64{0, 1, 2, 10, 40, 41}, "tick")
	timeline := profile.BuildTimeline(f)
	latency := profile.BuildLatencyProfile(f, timeline)

	assert.LessOrEqual(t, latency.Distribution.P50Ms, latency.Distribution.P95Ms)
	assert.LessOrEqual(t, latency.Distribution.P95Ms, latency.Distribution.P99Ms)
	assert.LessOrEqual(t, latency.Distribution.P99Ms, latency.Distribution.MaxMs)
}

func TestCpuProfileFoldsByEventName(t *testing.T) {
	t.Parallel()

	f := tracedEvents([]uint64{0, 1, 2}, "step")
	timeline := profile.BuildTimeline(f)
	cpu := profile.BuildCpuProfile(f, timeline)

	require.Len(t, cpu.FoldedStacks, 1)
	assert.Equal(t, "fozzy::runtime;event::step", cpu.FoldedStacks[0].Stack)
	assert.Equal(t, uint64(1+1+1), cpu.FoldedStacks[0].Weight)
}

func TestHeapProfileTracksLiveAllocation(t *testing.T) {
	t.Parallel()

	bytes := uint64(128)
	f := &trace.File{
		Format:  trace.Format,
		Version: trace.CurrentVersion,
		Engine:  trace.Engine{Version: "0.1.0"},
		Mode:    trace.ModeRun,
		Events: []trace.Event{
			{TimeMs: 0, Name: "memory_alloc", Fields: map[string]any{
				"alloc_id": "1", "callsite_hash": "abc", "bytes": float64(bytes),
			}},
			{TimeMs: 5, Name: "memory_free", Fields: map[string]any{"alloc_id": "1"}},
		},
		Summary: trace.RunSummary{Identity: trace.Identity{RunID: "run-1"}},
	}

	timeline := profile.BuildTimeline(f)
	heap := profile.BuildHeapProfile(f, timeline)

	assert.Equal(t, bytes, heap.TotalAllocBytes)
	assert.Equal(t, uint64(0), heap.InUseBytes)
	require.Len(t, heap.Hotspots, 1)
	assert.Equal(t, "abc", heap.Hotspots[0].CallsiteHash)
	assert.Equal(t, bytes, heap.Hotspots[0].AllocBytes)
	require.Len(t, heap.LifetimeHistogram, 1)
	assert.Equal(t, "2-10ms", heap.LifetimeHistogram[0].Bucket)
}

func TestMetricValueSelectsDomain(t *testing.T) {
	t.Parallel()

	cpu := profile.CpuProfile{FoldedStacks: []profile.FoldedStack{{Weight: 3}, {Weight: 4}}}
	heap := profile.HeapProfile{TotalAllocBytes: 512}
	latency := profile.LatencyProfile{Distribution: profile.LatencyDistribution{P99Ms: 9}}

	assert.InDelta(t, 7.0, profile.MetricValue(profile.MetricCpuTime, cpu, heap, latency), 0.0001)
	assert.InDelta(t, 512.0, profile.MetricValue(profile.MetricAllocBytes, cpu, heap, latency), 0.0001)
	assert.InDelta(t, 9.0, profile.MetricValue(profile.MetricP99Latency, cpu, heap, latency), 0.0001)
}
