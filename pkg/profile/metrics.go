package profile

import "github.com/ariacomputecompany/fozzy/pkg/trace"

// BuildMetrics rolls up the CPU, heap, and latency reducers plus raw
// timeline counts into the flat cross-domain Metrics struct consumed by
// Diff and Explain.
func BuildMetrics(f *trace.File, timeline []Event, cpu CpuProfile, heap HeapProfile, latency LatencyProfile) Metrics {
	var virtualTimeMs uint64
	if len(timeline) > 0 {
		virtualTimeMs = timeline[len(timeline)-1].TVirtual
	}

	var cpuTimeMs uint64
	for _, s := range cpu.FoldedStacks {
		cpuTimeMs += s.Weight
	}

	var ioOps, schedOps uint64

	for _, event := range timeline {
		switch event.Kind {
		case KindIO, KindNet:
			ioOps++
		case KindSched:
			schedOps++
		}
	}

	confidence := 0.8
	if f.Summary.DurationMs == 0 {
		confidence = 0.0
	}

	return Metrics{
		SchemaVersion: "fozzy.profile_metrics.v1",
		RunID:         f.Summary.Identity.RunID,
		VirtualTimeMs: virtualTimeMs,
		HostTimeMs:    f.Summary.DurationMs,
		CpuTimeMs:     cpuTimeMs,
		AllocBytes:    heap.TotalAllocBytes,
		InUseBytes:    heap.InUseBytes,
		P50LatencyMs:  latency.Distribution.P50Ms,
		P95LatencyMs:  latency.Distribution.P95Ms,
		P99LatencyMs:  latency.Distribution.P99Ms,
		MaxLatencyMs:  latency.Distribution.MaxMs,
		IOOps:         ioOps,
		SchedOps:      schedOps,
		Confidence:    &confidence,
	}
}
