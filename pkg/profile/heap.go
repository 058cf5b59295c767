package profile

import (
	"sort"
	"strconv"

	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

type liveAlloc struct {
	bytes        uint64
	callsiteHash string
	start        uint64
	end          *uint64
}

// BuildHeapProfile pairs memory_alloc/memory_free timeline events by
// alloc_id, derives per-callsite hotspots, a lifetime histogram over
// completed allocations, and retention suspects over allocations still
// live at the end of the trace.
func BuildHeapProfile(f *trace.File, timeline []Event) HeapProfile {
	live := map[uint64]liveAlloc{}
	completed := []liveAlloc{}

	for _, event := range timeline {
		switch event.Kind {
		case KindAlloc:
			allocID, ok := parseAllocID(event.Tags)
			if !ok || allocID == 0 {
				continue
			}

			if reason, ok := event.Tags["failed_reason"]; ok && reason != "" && reason != "null" {
				continue
			}

			callsite := event.Tags["callsite_hash"]
			if callsite == "" {
				callsite = "unknown"
			}

			var bytes uint64
			if event.Cost.Bytes != nil {
				bytes = *event.Cost.Bytes
			}

			live[allocID] = liveAlloc{
				bytes:        bytes,
				callsiteHash: callsite,
				start:        event.TVirtual,
			}
		case KindFree:
			allocID, ok := parseAllocID(event.Tags)
			if !ok {
				continue
			}

			if a, ok := live[allocID]; ok {
				end := event.TVirtual
				a.end = &end
				completed = append(completed, a)
				delete(live, allocID)
			}
		}
	}

	hotspots := map[string]*HeapCallsite{}

	var totalAllocBytes uint64

	accumulate := func(a liveAlloc) {
		totalAllocBytes += a.bytes

		entry, ok := hotspots[a.callsiteHash]
		if !ok {
			entry = &HeapCallsite{CallsiteHash: a.callsiteHash}
			hotspots[a.callsiteHash] = entry
		}

		entry.AllocCount++
		entry.AllocBytes += a.bytes

		if a.end == nil {
			entry.InUseBytes += a.bytes
		}
	}

	for _, a := range live {
		accumulate(a)
	}

	for _, a := range completed {
		accumulate(a)
	}

	hotspotList := make([]HeapCallsite, 0, len(hotspots))
	for _, h := range hotspots {
		hotspotList = append(hotspotList, *h)
	}

	sort.Slice(hotspotList, func(i, j int) bool {
		if hotspotList[i].InUseBytes != hotspotList[j].InUseBytes {
			return hotspotList[i].InUseBytes > hotspotList[j].InUseBytes
		}

		if hotspotList[i].AllocBytes != hotspotList[j].AllocBytes {
			return hotspotList[i].AllocBytes > hotspotList[j].AllocBytes
		}

		return hotspotList[i].CallsiteHash < hotspotList[j].CallsiteHash
	})

	var endT uint64
	if len(timeline) > 0 {
		endT = timeline[len(timeline)-1].TVirtual
	}

	suspects := make([]RetentionSuspect, 0, len(live))
	for allocID, a := range live {
		suspects = append(suspects, RetentionSuspect{
			AllocID:      allocID,
			CallsiteHash: a.callsiteHash,
			Bytes:        a.bytes,
			AgeMs:        saturatingSub(endT, a.start),
		})
	}

	sort.Slice(suspects, func(i, j int) bool {
		if suspects[i].Bytes != suspects[j].Bytes {
			return suspects[i].Bytes > suspects[j].Bytes
		}

		if suspects[i].AgeMs != suspects[j].AgeMs {
			return suspects[i].AgeMs > suspects[j].AgeMs
		}

		return suspects[i].AllocID < suspects[j].AllocID
	})

	bins := map[string]uint64{}

	for _, a := range completed {
		end := a.start
		if a.end != nil {
			end = *a.end
		}

		d := saturatingSub(end, a.start)

		var bucket string

		switch {
		case d <= 1:
			bucket = "0-1ms"
		case d <= 10:
			bucket = "2-10ms"
		case d <= 100:
			bucket = "11-100ms"
		default:
			bucket = "101ms+"
		}

		bins[bucket]++
	}

	lifetimeHistogram := bucketsInOrder(bins)

	var inUseBytes uint64
	for _, a := range live {
		inUseBytes += a.bytes
	}

	spanS := float64(endT)
	if spanS < 1 {
		spanS = 1
	}

	spanS /= 1000.0

	allocRatePerSec := float64(totalAllocBytes) / spanS

	var traceMemoryInUse uint64
	if f.Memory != nil {
		traceMemoryInUse = f.Memory.Summary.InUseBytes
	}

	if traceMemoryInUse > inUseBytes {
		inUseBytes = traceMemoryInUse
	}

	return HeapProfile{
		SchemaVersion:     "fozzy.profile_heap.v1",
		RunID:             f.Summary.Identity.RunID,
		TotalAllocBytes:   totalAllocBytes,
		InUseBytes:        inUseBytes,
		AllocRatePerSec:   allocRatePerSec,
		Hotspots:          hotspotList,
		LifetimeHistogram: lifetimeHistogram,
		RetentionSuspects: suspects,
	}
}

func parseAllocID(tags map[string]string) (uint64, bool) {
	raw, ok := tags["alloc_id"]
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}

	return a - b
}

// bucketsInOrder returns histogram bins in the fixed lifetime-bucket order,
// omitting buckets with no observations, matching the original's BTreeMap
// iteration (which sorts lexically, the same order as this fixed list).
func bucketsInOrder(bins map[string]uint64) []HistogramBin {
	order := []string{"0-1ms", "101ms+", "11-100ms", "2-10ms"}

	out := make([]HistogramBin, 0, len(bins))

	for _, bucket := range order {
		if count, ok := bins[bucket]; ok {
			out = append(out, HistogramBin{Bucket: bucket, Count: count})
		}
	}

	return out
}
