// Package decision models the ordered log of non-deterministic consumption
// points (random draws, elapsed time, step markers) that a scenario run
// records for later replay.
package decision

import "fmt"

// Kind discriminates a Decision's variant, serialized as the "kind" field.
type Kind string

const (
	KindRandU64      Kind = "rand_u64"
	KindRandBytes    Kind = "rand_bytes"
	KindTimeSleepMs  Kind = "time_sleep_ms"
	KindTimeAdvanceMs Kind = "time_advance_ms"
	KindStep         Kind = "step"
)

// Decision is a single recorded consumption of non-determinism. Only the
// fields relevant to Kind are populated; the rest are zero values. This
// mirrors the flat-struct-plus-discriminator idiom fozzy uses throughout
// instead of a Rust tagged enum.
type Decision struct {
	Kind Kind `json:"kind"`

	// RandU64
	Value uint64 `json:"value,omitempty"`

	// RandBytes
	Hex string `json:"hex,omitempty"`

	// TimeSleepMs / TimeAdvanceMs
	Ms uint64 `json:"ms,omitempty"`

	// Step
	Index int    `json:"index,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Log is the ordered sequence of Decisions recorded for a run.
type Log []Decision

// Cursor replays a Log in order, the analogue of the original DecisionCursor.
type Cursor struct {
	log Log
	pos int
}

// NewCursor returns a Cursor positioned at the start of log.
func NewCursor(log Log) *Cursor {
	return &Cursor{log: log}
}

// Next returns the next Decision and advances the cursor, or false if
// exhausted.
func (c *Cursor) Next() (Decision, bool) {
	if c.pos >= len(c.log) {
		return Decision{}, false
	}

	d := c.log[c.pos]
	c.pos++

	return d, true
}

// Remaining reports how many decisions are left unreplayed.
func (c *Cursor) Remaining() int {
	return len(c.log) - c.pos
}

// Reset rewinds the cursor to the start of the log.
func (c *Cursor) Reset() {
	c.pos = 0
}

// String renders a Decision for debugging/log output.
func (d Decision) String() string {
	switch d.Kind {
	case KindRandU64:
		return fmt.Sprintf("rand_u64(%d)", d.Value)
	case KindRandBytes:
		return fmt.Sprintf("rand_bytes(%s)", d.Hex)
	case KindTimeSleepMs:
		return fmt.Sprintf("sleep_ms(%d)", d.Ms)
	case KindTimeAdvanceMs:
		return fmt.Sprintf("advance_ms(%d)", d.Ms)
	case KindStep:
		return fmt.Sprintf("step(%d,%s)", d.Index, d.Name)
	default:
		return string(d.Kind)
	}
}
