// Package shrink checks the metric-preserving contract a trace minimizer
// must uphold: after shrinking, a chosen metric must move in the requested
// direction relative to its baseline. The minimizer itself is an external
// collaborator — this package only verifies and reports on what it produced.
package shrink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ariacomputecompany/fozzy/internal/telemetry"
	"github.com/ariacomputecompany/fozzy/pkg/profile"
)

// Minimize selects which parts of a trace a Shrinker is allowed to remove.
type Minimize string

const (
	MinimizeAll    Minimize = "all"
	MinimizeEvents Minimize = "events"
	MinimizeSteps  Minimize = "steps"
)

// Options configures one shrink attempt.
type Options struct {
	OutTracePath string
	Budget       time.Duration
	Aggressive   bool
	Minimize     Minimize
}

// Result is what a Shrinker reports back after attempting to minimize a trace.
type Result struct {
	OutTracePath string
}

// Shrinker is the external trace-minimization collaborator: given an input
// trace path and Options, it produces a smaller trace at Result.OutTracePath.
// Fozzy does not implement the search itself — only the contract it must honor.
type Shrinker interface {
	Shrink(inTracePath string, opts Options) (Result, error)
}

// Direction is the required relationship between the after-shrink metric
// value and its baseline.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// Contract is the outcome of checking a shrink attempt's metric-preserving
// contract (fozzy.profile_shrink.v1 "contract" field).
type Contract struct {
	Metric    profile.Metric `json:"metric"`
	Direction Direction      `json:"direction"`
	Expected  string         `json:"expected"`
	Baseline  float64        `json:"baseline"`
	After     float64        `json:"after"`
	Preserved bool           `json:"preserved"`
	Reason    string         `json:"reason,omitempty"`
}

// CheckContract compares a baseline metric value against the value measured
// after shrinking and reports whether the requested direction held. When rm
// is non-nil, the outcome is recorded as a shrink attempt ("shrunk" when the
// contract holds, "contract_violated" otherwise).
func CheckContract(
	ctx context.Context, rm *telemetry.ReducerMetrics,
	metric profile.Metric, direction Direction, baseline, after float64,
) Contract {
	var preserved bool

	var comparator string

	switch direction {
	case DirectionDecrease:
		preserved = after <= baseline
		comparator = "<="
	default:
		preserved = after >= baseline
		comparator = ">="
	}

	c := Contract{
		Metric:    metric,
		Direction: direction,
		Expected:  fmt.Sprintf("after %s baseline", comparator),
		Baseline:  NormalizeMetricValue(baseline),
		After:     NormalizeMetricValue(after),
		Preserved: preserved,
	}

	if !preserved {
		c.Reason = fmt.Sprintf(
			"no feasible shrink found that preserves metric direction: expected after %s baseline for direction=%s (baseline=%s, after=%s)",
			comparator, direction, FormatMetricValue(baseline), FormatMetricValue(after),
		)
	}

	if rm != nil {
		outcome := "shrunk"
		if !preserved {
			outcome = "contract_violated"
		}

		rm.RecordShrinkAttempt(ctx, outcome)
	}

	return c
}

// NormalizeMetricValue collapses negative zero to positive zero so JSON
// output never shows "-0.0".
func NormalizeMetricValue(v float64) float64 {
	if v == 0 {
		return 0
	}

	return v
}

// FormatMetricValue renders v as a fixed six-decimal string with trailing
// zeros (and a bare trailing dot) trimmed off.
func FormatMetricValue(v float64) string {
	out := fmt.Sprintf("%.6f", NormalizeMetricValue(v))

	if strings.Contains(out, ".") {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ".")
	}

	return out
}
