// Package memory implements fozzy's deterministic memory capability state
// machine: an allocator simulator that turns a sequence of allocate/free/
// checkpoint calls into a MemoryRunReport, with limit, pressure-wave,
// fragmentation, and failure semantics plus a live-allocation graph.
package memory

// SchemaVersion is the embedded schema identifier for a MemoryRunReport.
const SchemaVersion = "fozzy.memory_report.v1"

// Options configures a State. PressureWave is a comma-separated list
// of positive integers, parsed once at construction.
type Options struct {
	LimitMb           *uint64 `json:"limit_mb,omitempty"`
	FailAfterAllocs   *uint64 `json:"fail_after_allocs,omitempty"`
	PressureWave      string  `json:"pressure_wave,omitempty"`
	FragmentationSeed *uint64 `json:"fragmentation_seed,omitempty"`
}

// Summary aggregates the counters produced over a State's lifetime.
type Summary struct {
	AllocCount       uint64 `json:"alloc_count"`
	FreeCount        uint64 `json:"free_count"`
	FailedAllocCount uint64 `json:"failed_alloc_count"`
	InUseBytes       uint64 `json:"in_use_bytes"`
	PeakBytes        uint64 `json:"peak_bytes"`
	LeakedBytes      uint64 `json:"leaked_bytes"`
	LeakedAllocs     uint64 `json:"leaked_allocs"`
}

// Leak describes a single live allocation remaining at finalize.
type Leak struct {
	AllocID      uint64  `json:"alloc_id"`
	Bytes        uint64  `json:"bytes"`
	CallsiteHash string  `json:"callsite_hash"`
	Tag          *string `json:"tag,omitempty"`
}

// TimelineEntry is one recorded lifecycle event (alloc, free, alloc_fail,
// free_missing, checkpoint), fields sorted by key for byte-stable output.
type TimelineEntry struct {
	Index  int            `json:"index"`
	TimeMs uint64         `json:"time_ms"`
	Kind   string         `json:"kind"`
	Fields map[string]any `json:"fields"`
}

// GraphNode is one node in the allocation graph.
type GraphNode struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// GraphEdge is one directed edge in the allocation graph, in insertion order.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// Graph is the full allocation graph: nodes sorted by id, edges in
// insertion order.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// RunReport is the complete memory artifact finalized from a State.
type RunReport struct {
	SchemaVersion string          `json:"schema_version"`
	Options       Options         `json:"options"`
	Summary       Summary         `json:"summary"`
	Leaks         []Leak          `json:"leaks"`
	Timeline      []TimelineEntry `json:"timeline"`
	Graph         Graph           `json:"graph"`
}
