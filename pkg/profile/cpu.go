package profile

import (
	"runtime"
	"sort"

	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

// BuildCpuProfile folds each timeline event into a synthetic two-frame
// stack ("fozzy::runtime;event::<name>") weighted by its duration, and
// ranks the folded stacks descending by weight (ties broken by stack text).
func BuildCpuProfile(f *trace.File, timeline []Event) CpuProfile {
	weights := make(map[string]uint64, len(timeline))
	samples := make([]CpuSample, 0, len(timeline))

	for _, event := range timeline {
		stackParts := []string{"fozzy::runtime", "event::" + event.Tags["name"]}
		stack := stackParts[0] + ";" + stackParts[1]

		weight := uint64(1)
		if event.Cost.DurationMs != nil && *event.Cost.DurationMs > weight {
			weight = *event.Cost.DurationMs
		}

		weights[stack] += weight

		samples = append(samples, CpuSample{
			Thread:   event.Thread,
			Stack:    stackParts,
			WeightMs: weight,
		})
	}

	folded := make([]FoldedStack, 0, len(weights))
	for stack, weight := range weights {
		folded = append(folded, FoldedStack{Stack: stack, Weight: weight})
	}

	sort.Slice(folded, func(i, j int) bool {
		if folded[i].Weight != folded[j].Weight {
			return folded[i].Weight > folded[j].Weight
		}

		return folded[i].Stack < folded[j].Stack
	})

	return CpuProfile{
		SchemaVersion: "fozzy.profile_cpu.v1",
		RunID:         f.Summary.Identity.RunID,
		Collector: CpuCollectorInfo{
			Domain:             "host_time",
			PrimaryCollector:   "perf_event_open",
			FallbackCollector:  "in_process_sampler",
			HostTimeSemantics:  "host-time CPU samples are not replay-deterministic; compare across repeated deterministic replays",
			LinuxPerfEventOpen: runtime.GOOS == "linux",
		},
		SamplePeriodMs: 1,
		SampleCount:    len(samples),
		Samples:        samples,
		FoldedStacks:   folded,
		SymbolsRef:     "symbols.json",
	}
}
