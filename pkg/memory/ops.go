package memory

import "sort"

// Diff compares the memory summaries of two resolved runs. Grounded on the
// original implementation's `memory diff` command — a supplemental
// operation beyond the core report shape.
type Diff struct {
	Left                string `json:"left"`
	Right               string `json:"right"`
	LeftLeakedBytes     uint64 `json:"leftLeakedBytes"`
	RightLeakedBytes    uint64 `json:"rightLeakedBytes"`
	LeftLeakedAllocs    uint64 `json:"leftLeakedAllocs"`
	RightLeakedAllocs   uint64 `json:"rightLeakedAllocs"`
	LeftPeakBytes       uint64 `json:"leftPeakBytes"`
	RightPeakBytes      uint64 `json:"rightPeakBytes"`
	DeltaLeakedBytes    int64  `json:"deltaLeakedBytes"`
	DeltaLeakedAllocs   int64  `json:"deltaLeakedAllocs"`
	DeltaPeakBytes      int64  `json:"deltaPeakBytes"`
}

// ComputeDiff computes the leaked/peak deltas between two summaries
// identified by selector strings left/right.
func ComputeDiff(left, right string, leftSummary, rightSummary Summary) Diff {
	return Diff{
		Left:              left,
		Right:             right,
		LeftLeakedBytes:   leftSummary.LeakedBytes,
		RightLeakedBytes:  rightSummary.LeakedBytes,
		LeftLeakedAllocs:  leftSummary.LeakedAllocs,
		RightLeakedAllocs: rightSummary.LeakedAllocs,
		LeftPeakBytes:     leftSummary.PeakBytes,
		RightPeakBytes:    rightSummary.PeakBytes,
		DeltaLeakedBytes:  int64(rightSummary.LeakedBytes) - int64(leftSummary.LeakedBytes),
		DeltaLeakedAllocs: int64(rightSummary.LeakedAllocs) - int64(leftSummary.LeakedAllocs),
		DeltaPeakBytes:    int64(rightSummary.PeakBytes) - int64(leftSummary.PeakBytes),
	}
}

// Top is the result of ranking leak records by bytes.
type Top struct {
	Run   string `json:"run"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
	Leaks []Leak `json:"leaks"`
}

// ComputeTop sorts leaks descending by bytes (ties broken by alloc_id
// ascending) and returns the first limit entries.
func ComputeTop(run string, leaks []Leak, limit int) Top {
	sorted := make([]Leak, len(leaks))
	copy(sorted, leaks)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Bytes != sorted[j].Bytes {
			return sorted[i].Bytes > sorted[j].Bytes
		}

		return sorted[i].AllocID < sorted[j].AllocID
	})

	total := len(sorted)
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return Top{Run: run, Limit: limit, Total: total, Leaks: sorted}
}

// GraphOutput re-exposes a resolved run's allocation graph.
type GraphOutput struct {
	Run   string `json:"run"`
	Graph Graph  `json:"graph"`
}
