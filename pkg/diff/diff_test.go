package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariacomputecompany/fozzy/pkg/diff"
	"github.com/ariacomputecompany/fozzy/pkg/profile"
)

func TestComputeRanksByAbsoluteDelta(t *testing.T) {
	t.Parallel()

	left := profile.Metrics{CpuTimeMs: 10, AllocBytes: 100, InUseBytes: 50}
	right := profile.Metrics{CpuTimeMs: 12, AllocBytes: 400, InUseBytes: 50}

	d := diff.Compute("left", "right", []string{"cpu", "heap"}, left, right)
	require.Len(t, d.Regressions, 3)
	assert.Equal(t, "alloc_bytes", d.Regressions[0].Metric)
	assert.InDelta(t, 300, d.Regressions[0].Delta, 0.0001)
}

func TestNormalizeDomainsDefaultsToAll(t *testing.T) {
	t.Parallel()

	assert.Equal(t, diff.AllDomains, diff.NormalizeDomains(false, false, false, false, false))
	assert.Equal(t, []string{"cpu", "heap"}, diff.NormalizeDomains(true, true, false, false, false))
}

func TestEnforceCpuContractRejectsUnderStrict(t *testing.T) {
	t.Parallel()

	require.Error(t, diff.EnforceCpuContract(true, true))
	require.NoError(t, diff.EnforceCpuContract(true, false))
	require.NoError(t, diff.EnforceCpuContract(false, true))
}

func TestExplainFromDiffPicksLargestShift(t *testing.T) {
	t.Parallel()

	left := profile.Metrics{RunID: "a", AllocBytes: 100}
	right := profile.Metrics{RunID: "b", AllocBytes: 900}

	e := diff.ExplainFromDiff("a", "b", left, right)
	assert.Equal(t, "heap", e.LikelyCauseDomain)
	assert.Contains(t, e.TopShiftedPath, "alloc_bytes")
}

func TestExplainSingleNoCriticalPath(t *testing.T) {
	t.Parallel()

	e := diff.ExplainSingle("run-1", "/tmp/run-1", profile.Metrics{RunID: "run-1"}, profile.LatencyProfile{})
	assert.Equal(t, "no critical path edges", e.TopShiftedPath)
	assert.Equal(t, "io", e.LikelyCauseDomain)
}
