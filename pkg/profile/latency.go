package profile

import (
	"math"
	"sort"

	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

// BuildLatencyProfile derives pairwise deltas over consecutive timeline
// events, classifies each delta's wait reason from the kind of the event it
// leads into, and ranks the resulting edges into a critical path.
func BuildLatencyProfile(f *trace.File, timeline []Event) LatencyProfile {
	deltas := make([]uint64, 0, len(timeline))
	criticalPath := make([]CriticalPathEdge, 0, len(timeline))
	reasons := map[string]uint64{}

	for i := 0; i+1 < len(timeline); i++ {
		left := timeline[i]
		right := timeline[i+1]

		d := saturatingSub(right.TVirtual, left.TVirtual)
		deltas = append(deltas, d)

		reason := waitReason(right.Kind)
		reasons[reason]++

		criticalPath = append(criticalPath, CriticalPathEdge{
			FromSpan:   left.SpanID,
			ToSpan:     right.SpanID,
			DurationMs: d,
			Reason:     reason,
		})
	}

	sort.Slice(criticalPath, func(i, j int) bool {
		if criticalPath[i].DurationMs != criticalPath[j].DurationMs {
			return criticalPath[i].DurationMs > criticalPath[j].DurationMs
		}

		return criticalPath[i].FromSpan < criticalPath[j].FromSpan
	})

	distribution := computeDistribution(deltas)

	waitReasons := make([]ReasonCount, 0, len(reasons))
	for reason, count := range reasons {
		waitReasons = append(waitReasons, ReasonCount{Reason: reason, Count: count})
	}

	sort.Slice(waitReasons, func(i, j int) bool { return waitReasons[i].Reason < waitReasons[j].Reason })

	return LatencyProfile{
		SchemaVersion: "fozzy.profile_latency.v1",
		RunID:         f.Summary.Identity.RunID,
		Distribution:  distribution,
		CriticalPath:  criticalPath,
		WaitReasons:   waitReasons,
	}
}

func waitReason(kind EventKind) string {
	switch kind {
	case KindIO:
		return "io"
	case KindSched:
		return "sched"
	case KindAlloc, KindFree:
		return "heap"
	case KindNet:
		return "payload"
	case KindSample:
		return "cpu"
	default:
		return "other"
	}
}

func computeDistribution(deltas []uint64) LatencyDistribution {
	if len(deltas) == 0 {
		return LatencyDistribution{}
	}

	sorted := make([]uint64, len(deltas))
	copy(sorted, deltas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	maxMs := sorted[len(sorted)-1]

	var sum float64
	for _, v := range deltas {
		sum += float64(v)
	}

	mean := sum / float64(len(deltas))

	var variance float64
	for _, v := range deltas {
		d := float64(v) - mean
		variance += d * d
	}

	variance /= float64(len(deltas))

	return LatencyDistribution{
		Count:    len(deltas),
		P50Ms:    percentile(sorted, 0.50),
		P95Ms:    percentile(sorted, 0.95),
		P99Ms:    percentile(sorted, 0.99),
		MaxMs:    maxMs,
		Variance: variance,
	}
}

// percentile computes the nearest-rank percentile over a value already
// sorted ascending.
func percentile(sorted []uint64, p float64) uint64 {
	if len(sorted) == 0 {
		return 0
	}

	idx := int(math.Round(float64(len(sorted)-1) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}
