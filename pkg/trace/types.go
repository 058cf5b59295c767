// Package trace implements fozzy's canonical trace artifact: the stable
// JSON format produced by an external scenario engine and consumed
// read-only by every downstream analysis component.
package trace

import (
	"github.com/ariacomputecompany/fozzy/pkg/decision"
	"github.com/ariacomputecompany/fozzy/pkg/memory"
)

// Format is the constant top-level format identifier.
const Format = "fozzy-trace"

// CurrentVersion is the only version this codec accepts on read.
const CurrentVersion = 1

// Mode enumerates how a trace-producing run was driven.
type Mode string

const (
	ModeRun     Mode = "run"
	ModeFuzz    Mode = "fuzz"
	ModeExplore Mode = "explore"
	ModeReplay  Mode = "replay"
	ModeShrink  Mode = "shrink"
)

// Engine records the producer identity of a trace.
type Engine struct {
	Version  string  `json:"version"`
	CommitID *string `json:"commit_id,omitempty"`
}

// Identity carries a run's stable identifiers and pointers to sibling artifacts.
type Identity struct {
	RunID        string  `json:"run_id"`
	Seed         uint64  `json:"seed"`
	TracePath    *string `json:"trace_path,omitempty"`
	ArtifactsDir *string `json:"artifacts_dir,omitempty"`
}

// Findings counts assertion outcomes recorded during a run.
type Findings struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// RunSummary is the embedded run-outcome record.
type RunSummary struct {
	Status     string          `json:"status"`
	Identity   Identity        `json:"identity"`
	StartedAt  string          `json:"started_at,omitempty"`
	FinishedAt string          `json:"finished_at,omitempty"`
	DurationMs uint64          `json:"duration_ms,omitempty"`
	TestCount  int             `json:"test_count,omitempty"`
	Findings   Findings        `json:"findings"`
	Memory     *memory.Summary `json:"memory,omitempty"`
}

// Event is a single raw trace event. Fields is an open map of scalar or
// object JSON values keyed by field name.
type Event struct {
	TimeMs uint64         `json:"time_ms"`
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
}

// File is the canonical trace artifact (TraceFile). Field order here
// matches the required top-level key order for serialization:
// format, version, engine, mode, scenario_path, scenario, memory,
// decisions, events, summary.
type File struct {
	Format       string                `json:"format"`
	Version      uint32                `json:"version"`
	Engine       Engine                `json:"engine"`
	Mode         Mode                  `json:"mode"`
	ScenarioPath *string               `json:"scenario_path,omitempty"`
	Scenario     *ScenarioDocument     `json:"scenario,omitempty"`
	Memory       *memory.RunReport     `json:"memory,omitempty"`
	Decisions    decision.Log          `json:"decisions"`
	Events       []Event               `json:"events"`
	Summary      RunSummary            `json:"summary"`
}
