package trace

import "encoding/json"

// StepKind discriminates a scenario Step's variant. The analysis core only
// ever reads these identifiers back off an embedded scenario document —
// scenario execution itself is an external collaborator.
type StepKind string

// Stable step identifiers, per the external scenario step vocabulary.
const (
	StepTraceEvent            StepKind = "trace_event"
	StepRandU64               StepKind = "rand_u64"
	StepAssertEqInt           StepKind = "assert_eq_int"
	StepAssertEqStr           StepKind = "assert_eq_str"
	StepSleep                 StepKind = "sleep"
	StepAdvance               StepKind = "advance"
	StepFreeze                StepKind = "freeze"
	StepUnfreeze              StepKind = "unfreeze"
	StepSetKv                 StepKind = "set_kv"
	StepGetKvAssert           StepKind = "get_kv_assert"
	StepFsWrite               StepKind = "fs_write"
	StepFsReadAssert          StepKind = "fs_read_assert"
	StepFsSnapshot            StepKind = "fs_snapshot"
	StepFsRestore             StepKind = "fs_restore"
	StepFail                  StepKind = "fail"
	StepPanic                 StepKind = "panic"
	StepMemoryAlloc           StepKind = "memory_alloc"
	StepMemoryFree            StepKind = "memory_free"
	StepMemoryLimitMb         StepKind = "memory_limit_mb"
	StepMemoryFailAfterAllocs StepKind = "memory_fail_after_allocs"
	StepMemoryFragmentation   StepKind = "memory_fragmentation"
	StepMemoryPressureWave    StepKind = "memory_pressure_wave"
	StepMemoryCheckpoint      StepKind = "memory_checkpoint"
	StepMemoryAssertInUse     StepKind = "memory_assert_in_use_bytes"
	StepNetPartition          StepKind = "net_partition"
	StepNetHeal               StepKind = "net_heal"
)

// Step is a single scenario step, flattened across all known variants. The
// core never constructs or executes a Step; it only echoes fields back from
// an embedded scenario document (e.g. into diagnostics or explain text).
type Step struct {
	Type StepKind `json:"type"`

	Name     string          `json:"name,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
	Key      string          `json:"key,omitempty"`
	A        int64           `json:"a,omitempty"`
	B        int64           `json:"b,omitempty"`
	AStr     string          `json:"aStr,omitempty"`
	BStr     string          `json:"bStr,omitempty"`
	Msg      string          `json:"msg,omitempty"`
	Duration string          `json:"duration,omitempty"`
	AtMs     *uint64         `json:"atMs,omitempty"`
	Value    string          `json:"value,omitempty"`
	Equals   *string         `json:"equals,omitempty"`
	IsNull   *bool           `json:"isNull,omitempty"`
	Path     string          `json:"path,omitempty"`
	Data     string          `json:"data,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// ScenarioDocument is the embedded `steps` scenario file shape (version 1
// only — the `suites` variant has no executable step DSL and is rejected by
// the external scenario loader before a trace is ever produced).
type ScenarioDocument struct {
	Version uint32 `json:"version"`
	Name    string `json:"name"`
	Steps   []Step `json:"steps"`
}
