// Package diff compares two profile metric rollups and renders a
// natural-language explanation of the largest shift, using a fixed
// per-domain metric-pair table so comparisons stay deterministic.
package diff

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/ariacomputecompany/fozzy/pkg/ferrors"
	"github.com/ariacomputecompany/fozzy/pkg/profile"
)

// byteMetrics names the metrics in metricPairs whose values are byte counts,
// so ExplainFromDiff can render them alongside a human-readable size.
var byteMetrics = map[string]bool{
	"alloc_bytes":  true,
	"in_use_bytes": true,
}

// RegressionFinding is one metric-pair comparison between a left and right run.
type RegressionFinding struct {
	Domain     string  `json:"domain"`
	Metric     string  `json:"metric"`
	LeftValue  float64 `json:"left"`
	RightValue float64 `json:"right"`
	Delta      float64 `json:"delta"`
	DeltaPct   float64 `json:"deltaPct"`
	Confidence float64 `json:"confidence"`
}

// Diff is the result of comparing two runs across a set of domains.
type Diff struct {
	SchemaVersion string              `json:"schemaVersion"`
	Left          string              `json:"left"`
	Right         string              `json:"right"`
	Domains       []string            `json:"domains"`
	Regressions   []RegressionFinding `json:"regressions"`
}

// AllDomains is the fixed domain vocabulary, in the order normalize_domains
// defaults to when no domain flag is given.
var AllDomains = []string{"cpu", "io", "sched", "heap", "latency"}

// NormalizeDomains returns the requested subset of AllDomains in canonical
// order, or every domain when none are requested.
func NormalizeDomains(cpu, heap, latency, io, sched bool) []string {
	if !cpu && !heap && !latency && !io && !sched {
		return append([]string(nil), AllDomains...)
	}

	out := make([]string, 0, 5)
	if cpu {
		out = append(out, "cpu")
	}

	if heap {
		out = append(out, "heap")
	}

	if latency {
		out = append(out, "latency")
	}

	if io {
		out = append(out, "io")
	}

	if sched {
		out = append(out, "sched")
	}

	return out
}

// EnforceCpuContract rejects CPU-domain requests under strict mode: host-time
// CPU samples are not replay-deterministic, so strict comparisons exclude them.
func EnforceCpuContract(strict, cpuRequested bool) error {
	if strict && cpuRequested {
		return ferrors.New(
			ferrors.InvalidArgument,
			"strict profile contract forbids CPU domain because host-time CPU samples are not replay-deterministic; opt out explicitly to proceed",
		)
	}

	return nil
}

// metricPairs returns the fixed (metric name, left value, right value)
// triples compared for domain.
func metricPairs(domain string, l, r profile.Metrics) []RegressionFinding {
	pair := func(metric string, lv, rv float64) RegressionFinding {
		delta := rv - lv

		var deltaPct float64

		if lv == 0 {
			if rv != 0 {
				deltaPct = 100.0
			}
		} else {
			deltaPct = (delta / lv) * 100.0
		}

		return RegressionFinding{
			Domain: domain, Metric: metric,
			LeftValue: lv, RightValue: rv,
			Delta: delta, DeltaPct: deltaPct,
			Confidence: 0.8,
		}
	}

	switch domain {
	case "cpu":
		return []RegressionFinding{pair("cpu_time_ms", float64(l.CpuTimeMs), float64(r.CpuTimeMs))}
	case "heap":
		return []RegressionFinding{
			pair("alloc_bytes", float64(l.AllocBytes), float64(r.AllocBytes)),
			pair("in_use_bytes", float64(l.InUseBytes), float64(r.InUseBytes)),
		}
	case "latency":
		return []RegressionFinding{
			pair("p95_latency_ms", float64(l.P95LatencyMs), float64(r.P95LatencyMs)),
			pair("p99_latency_ms", float64(l.P99LatencyMs), float64(r.P99LatencyMs)),
			pair("max_latency_ms", float64(l.MaxLatencyMs), float64(r.MaxLatencyMs)),
		}
	case "io":
		return []RegressionFinding{pair("io_ops", float64(l.IOOps), float64(r.IOOps))}
	case "sched":
		return []RegressionFinding{pair("sched_ops", float64(l.SchedOps), float64(r.SchedOps))}
	default:
		return nil
	}
}

// Compute builds a Diff over domains between two runs' metric rollups,
// ranking regressions descending by |delta| with metric name as tiebreak.
func Compute(left, right string, domains []string, l, r profile.Metrics) Diff {
	regressions := make([]RegressionFinding, 0, len(domains)*2)

	for _, domain := range domains {
		regressions = append(regressions, metricPairs(domain, l, r)...)
	}

	sort.Slice(regressions, func(i, j int) bool {
		ai, aj := math.Abs(regressions[i].Delta), math.Abs(regressions[j].Delta)
		if ai != aj {
			return ai > aj
		}

		return regressions[i].Metric < regressions[j].Metric
	})

	return Diff{
		SchemaVersion: "fozzy.profile_diff.v1",
		Left:          left,
		Right:         right,
		Domains:       domains,
		Regressions:   regressions,
	}
}

// Explanation is the natural-language regression summary (fozzy.profile_explain.v1).
type Explanation struct {
	SchemaVersion       string   `json:"schemaVersion"`
	Run                 string   `json:"run"`
	RegressionStatement string   `json:"regressionStatement"`
	TopShiftedPath      string   `json:"topShiftedPath"`
	LikelyCauseDomain   string   `json:"likelyCauseDomain"`
	EvidencePointers    []string `json:"evidencePointers"`
}

// ExplainSingle summarizes one run's own profile bundle without a comparison.
func ExplainSingle(run string, artifactsDir string, metrics profile.Metrics, latency profile.LatencyProfile) Explanation {
	topPath := "no critical path edges"
	if len(latency.CriticalPath) > 0 {
		p := latency.CriticalPath[0]
		topPath = fmt.Sprintf("%s -> %s (%dms)", p.FromSpan, p.ToSpan, p.DurationMs)
	}

	domain := "io"

	switch {
	case metrics.P99LatencyMs > 0:
		domain = "latency"
	case metrics.AllocBytes > 0:
		domain = "heap"
	}

	return Explanation{
		SchemaVersion: "fozzy.profile_explain.v1",
		Run:           run,
		RegressionStatement: fmt.Sprintf(
			"run %s shows p99=%dms, alloc_bytes=%d (%s), io_ops=%d, sched_ops=%d",
			metrics.RunID, metrics.P99LatencyMs, metrics.AllocBytes,
			humanize.Bytes(metrics.AllocBytes), metrics.IOOps, metrics.SchedOps,
		),
		TopShiftedPath:    topPath,
		LikelyCauseDomain: domain,
		EvidencePointers: []string{
			artifactsDir + "/profile.metrics.json",
			artifactsDir + "/profile.latency.json",
			artifactsDir + "/profile.heap.json",
		},
	}
}

// ExplainFromDiff summarizes the largest regression between two runs.
func ExplainFromDiff(left, right string, l, r profile.Metrics) Explanation {
	d := Compute(left, right, AllDomains, l, r)

	statement := "no measurable regression shift found"
	path := "n/a"
	domain := "unknown"

	if len(d.Regressions) > 0 {
		top := d.Regressions[0]
		statement = fmt.Sprintf(
			"%s %s changed from %.2f to %.2f (%+.2f%%)",
			top.Domain, top.Metric, top.LeftValue, top.RightValue, top.DeltaPct,
		)

		if byteMetrics[top.Metric] {
			statement = fmt.Sprintf(
				"%s (%s -> %s)",
				statement,
				humanize.Bytes(uint64(math.Max(0, top.LeftValue))),
				humanize.Bytes(uint64(math.Max(0, top.RightValue))),
			)
		}

		path = "metric::" + top.Metric
		domain = top.Domain
	}

	return Explanation{
		SchemaVersion:       "fozzy.profile_explain.v1",
		Run:                 left,
		RegressionStatement: statement,
		TopShiftedPath:      path,
		LikelyCauseDomain:   domain,
		EvidencePointers: []string{
			"profile.metrics.json",
			"profile.latency.json",
			"profile.cpu.json",
			"profile.heap.json",
		},
	}
}
