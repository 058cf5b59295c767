package memory

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/ariacomputecompany/fozzy/internal/telemetry"
	"github.com/ariacomputecompany/fozzy/pkg/units"
)

const (
	fragmentationMod = 31
	percentDivisor   = 100
)

// AllocRecord is a single live allocation tracked by a State.
type AllocRecord struct {
	Bytes        uint64
	CallsiteHash string
	Tag          *string
}

// AllocOutcome is returned from State.Allocate.
type AllocOutcome struct {
	AllocID      *uint64
	FailedReason string
	CallsiteHash string
}

// State is the deterministic memory capability state machine. It is not
// internally thread-safe — callers (the scenario engine) serialize access,
// per the single-threaded core described for this module.
type State struct {
	options Options

	nextAllocID      uint64
	allocOps         uint64
	inUseBytes       uint64
	peakBytes        uint64
	freeCount        uint64
	failedAllocCount uint64

	live map[uint64]AllocRecord

	timeline []TimelineEntry

	graphNodes map[string]struct{}
	graphEdges []GraphEdge

	pressureWave      []uint64
	fragmentationSeed uint64

	metricsCtx context.Context
	metrics    *telemetry.ReducerMetrics
}

// AttachMetrics wires optional instrumentation into the state: every
// subsequent Allocate call records its accept/reject outcome through rm.
// Passing a nil rm detaches instrumentation.
func (s *State) AttachMetrics(ctx context.Context, rm *telemetry.ReducerMetrics) {
	s.metricsCtx = ctx
	s.metrics = rm
}

func (s *State) recordAllocation(accepted bool) {
	if s.metrics != nil {
		s.metrics.RecordAllocation(s.metricsCtx, accepted)
	}
}

// NewState constructs a State from Options, parsing the pressure-wave list
// once up front.
func NewState(options Options) *State {
	var fragSeed uint64
	if options.FragmentationSeed != nil {
		fragSeed = *options.FragmentationSeed
	}

	return &State{
		options:           options,
		nextAllocID:       1,
		live:              make(map[uint64]AllocRecord),
		graphNodes:        make(map[string]struct{}),
		pressureWave:      parsePressureWave(options.PressureWave),
		fragmentationSeed: fragSeed,
	}
}

func parsePressureWave(pattern string) []uint64 {
	if pattern == "" {
		return nil
	}

	var out []uint64

	for _, part := range strings.Split(pattern, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || v == 0 {
			continue
		}

		out = append(out, v)
	}

	return out
}

func callsiteHash(label string) string {
	sum := blake3.Sum256([]byte(label))

	return hex.EncodeToString(sum[:])
}

// Allocate records an allocation attempt, applying limit, pressure-wave, and
// fragmentation scaling before accepting or rejecting it.
func (s *State) Allocate(bytes uint64, tag *string, callsite string, timeMs uint64) AllocOutcome {
	hash := callsiteHash(callsite)
	s.allocOps++

	effective := s.effectiveAllocBytes(bytes)

	if s.options.LimitMb != nil {
		limit := *s.options.LimitMb * units.MiB
		if s.inUseBytes+effective > limit {
			s.failedAllocCount++
			s.pushTimeline(timeMs, "alloc_fail", map[string]any{
				"bytes":          bytes,
				"effectiveBytes": effective,
				"reason":         "limit_mb",
				"callsiteHash":   hash,
			})
			s.recordAllocation(false)

			return AllocOutcome{FailedReason: "limit_mb", CallsiteHash: hash}
		}
	}

	if s.options.FailAfterAllocs != nil && s.allocOps > *s.options.FailAfterAllocs {
		s.failedAllocCount++
		s.pushTimeline(timeMs, "alloc_fail", map[string]any{
			"bytes":          bytes,
			"effectiveBytes": effective,
			"reason":         "fail_after_allocs",
			"callsiteHash":   hash,
		})
		s.recordAllocation(false)

		return AllocOutcome{FailedReason: "fail_after_allocs", CallsiteHash: hash}
	}

	allocID := s.nextAllocID
	s.nextAllocID++
	s.inUseBytes += effective

	if s.inUseBytes > s.peakBytes {
		s.peakBytes = s.inUseBytes
	}

	s.live[allocID] = AllocRecord{Bytes: effective, CallsiteHash: hash, Tag: tag}

	fields := map[string]any{
		"allocId":        allocID,
		"bytes":          bytes,
		"effectiveBytes": effective,
		"inUseBytes":     s.inUseBytes,
		"callsiteHash":   hash,
	}
	if tag != nil {
		fields["tag"] = *tag
	} else {
		fields["tag"] = nil
	}

	s.pushTimeline(timeMs, "alloc", fields)
	s.recordAllocation(true)

	allocNode := fmt.Sprintf("alloc:%d", allocID)
	callsiteNode := fmt.Sprintf("callsite:%s", hash)
	s.graphNodes[allocNode] = struct{}{}
	s.graphNodes[callsiteNode] = struct{}{}
	s.graphEdges = append(s.graphEdges, GraphEdge{From: callsiteNode, To: allocNode, Kind: "allocates"})

	id := allocID

	return AllocOutcome{AllocID: &id, CallsiteHash: hash}
}

// Free releases a live allocation. It returns false (and records
// free_missing) if alloc_id is not currently live.
func (s *State) Free(allocID uint64, timeMs uint64) bool {
	rec, ok := s.live[allocID]
	if !ok {
		s.pushTimeline(timeMs, "free_missing", map[string]any{"allocId": allocID})

		return false
	}

	delete(s.live, allocID)
	s.freeCount++
	s.inUseBytes -= rec.Bytes

	s.pushTimeline(timeMs, "free", map[string]any{
		"allocId":    allocID,
		"bytes":      rec.Bytes,
		"inUseBytes": s.inUseBytes,
	})

	freeNode := fmt.Sprintf("free:%d", allocID)
	s.graphNodes[freeNode] = struct{}{}
	s.graphEdges = append(s.graphEdges, GraphEdge{
		From: fmt.Sprintf("alloc:%d", allocID),
		To:   freeNode,
		Kind: "freed_by",
	})

	return true
}

// Checkpoint records a named checkpoint marker at the current state.
func (s *State) Checkpoint(name string, timeMs uint64) {
	s.pushTimeline(timeMs, "checkpoint", map[string]any{
		"name":       name,
		"inUseBytes": s.inUseBytes,
		"liveAllocs": uint64(len(s.live)),
	})
}

// InUseBytes reports the current live byte total.
func (s *State) InUseBytes() uint64 {
	return s.inUseBytes
}

// Finalize drains the State into an immutable RunReport.
func (s *State) Finalize() RunReport {
	ids := make([]uint64, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	leaks := make([]Leak, 0, len(ids))

	var leakedBytes uint64

	for _, id := range ids {
		rec := s.live[id]
		leaks = append(leaks, Leak{AllocID: id, Bytes: rec.Bytes, CallsiteHash: rec.CallsiteHash, Tag: rec.Tag})
		leakedBytes += rec.Bytes
	}

	summary := Summary{
		AllocCount:       s.allocOps,
		FreeCount:        s.freeCount,
		FailedAllocCount: s.failedAllocCount,
		InUseBytes:       s.inUseBytes,
		PeakBytes:        s.peakBytes,
		LeakedBytes:      leakedBytes,
		LeakedAllocs:     uint64(len(leaks)),
	}

	nodeIDs := make([]string, 0, len(s.graphNodes))
	for id := range s.graphNodes {
		nodeIDs = append(nodeIDs, id)
	}

	sort.Strings(nodeIDs)

	nodes := make([]GraphNode, 0, len(nodeIDs))

	for _, id := range nodeIDs {
		kind, label := "node", id

		switch {
		case strings.HasPrefix(id, "alloc:"):
			kind, label = "alloc", strings.TrimPrefix(id, "alloc:")
		case strings.HasPrefix(id, "free:"):
			kind, label = "free", strings.TrimPrefix(id, "free:")
		case strings.HasPrefix(id, "callsite:"):
			kind, label = "callsite", strings.TrimPrefix(id, "callsite:")
		}

		nodes = append(nodes, GraphNode{ID: id, Kind: kind, Label: label})
	}

	return RunReport{
		SchemaVersion: SchemaVersion,
		Options:       s.options,
		Summary:       summary,
		Leaks:         leaks,
		Timeline:      s.timeline,
		Graph:         Graph{Nodes: nodes, Edges: s.graphEdges},
	}
}

func (s *State) pushTimeline(timeMs uint64, kind string, fields map[string]any) {
	s.timeline = append(s.timeline, TimelineEntry{
		Index:  len(s.timeline),
		TimeMs: timeMs,
		Kind:   kind,
		Fields: fields,
	})
}

func (s *State) effectiveAllocBytes(requested uint64) uint64 {
	scaled := requested
	if len(s.pressureWave) > 0 {
		idx := int((s.saturatingAllocOpsMinusOne()) % uint64(len(s.pressureWave)))
		scaled = requested * s.pressureWave[idx]
	}

	if s.options.FragmentationSeed != nil {
		var input [24]byte
		binary.LittleEndian.PutUint64(input[0:8], s.fragmentationSeed)
		binary.LittleEndian.PutUint64(input[8:16], s.allocOps)
		binary.LittleEndian.PutUint64(input[16:24], requested)

		h := blake3.Sum256(input[:])
		pct := uint64(h[0]) % fragmentationMod
		scaled += (scaled * pct) / percentDivisor
	}

	return scaled
}

func (s *State) saturatingAllocOpsMinusOne() uint64 {
	if s.allocOps == 0 {
		return 0
	}

	return s.allocOps - 1
}
