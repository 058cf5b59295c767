package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariacomputecompany/fozzy/pkg/memory"
)

func TestComputeTopSortsDescendingByBytes(t *testing.T) {
	t.Parallel()

	leaks := []memory.Leak{
		{AllocID: 1, Bytes: 10, CallsiteHash: "a"},
		{AllocID: 2, Bytes: 50, CallsiteHash: "b"},
		{AllocID: 3, Bytes: 20, CallsiteHash: "c"},
	}

	top := memory.ComputeTop("run-1", leaks, 10)
	assert.Equal(t, 3, top.Total)
	assert.Equal(t, uint64(50), top.Leaks[0].Bytes)
	assert.Equal(t, uint64(20), top.Leaks[1].Bytes)
	assert.Equal(t, uint64(10), top.Leaks[2].Bytes)
}

func TestComputeTopTiebreaksByAllocID(t *testing.T) {
	t.Parallel()

	leaks := []memory.Leak{
		{AllocID: 5, Bytes: 10},
		{AllocID: 2, Bytes: 10},
	}

	top := memory.ComputeTop("run-1", leaks, 10)
	assert.Equal(t, uint64(2), top.Leaks[0].AllocID)
	assert.Equal(t, uint64(5), top.Leaks[1].AllocID)
}

func TestComputeTopRespectsLimit(t *testing.T) {
	t.Parallel()

	leaks := []memory.Leak{{AllocID: 1, Bytes: 1}, {AllocID: 2, Bytes: 2}, {AllocID: 3, Bytes: 3}}
	top := memory.ComputeTop("run-1", leaks, 1)
	assert.Equal(t, 3, top.Total)
	assert.Len(t, top.Leaks, 1)
	assert.Equal(t, uint64(3), top.Leaks[0].Bytes)
}

func TestComputeDiff(t *testing.T) {
	t.Parallel()

	left := memory.Summary{LeakedBytes: 10, LeakedAllocs: 1, PeakBytes: 100}
	right := memory.Summary{LeakedBytes: 30, LeakedAllocs: 2, PeakBytes: 80}

	d := memory.ComputeDiff("left", "right", left, right)
	assert.Equal(t, int64(20), d.DeltaLeakedBytes)
	assert.Equal(t, int64(1), d.DeltaLeakedAllocs)
	assert.Equal(t, int64(-20), d.DeltaPeakBytes)
}
