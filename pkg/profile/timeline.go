package profile

import (
	"fmt"
	"strconv"

	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

// BuildTimeline derives the Component C profile timeline from a trace's raw
// event log. Each raw event becomes one Event carrying a synthetic span id
// chained to its predecessor, a classified Kind, and a flattened tag map.
func BuildTimeline(f *trace.File) []Event {
	runID := f.Summary.Identity.RunID
	seed := f.Summary.Identity.Seed

	out := make([]Event, 0, len(f.Events))

	for idx, event := range f.Events {
		kind := mapEventKind(event.Name)

		var duration *uint64
		if idx+1 < len(f.Events) {
			next := f.Events[idx+1].TimeMs
			if next >= event.TimeMs {
				d := next - event.TimeMs
				duration = &d
			}
		}

		tags := map[string]string{"name": event.Name}
		for k, v := range event.Fields {
			if s, ok := stringifyTag(v); ok {
				tags[k] = s
			}
		}

		var bytes *uint64
		if b, ok := fieldUint64(event.Fields, "bytes"); ok {
			bytes = &b
		} else if b, ok := fieldUint64(event.Fields, "payload_size"); ok {
			bytes = &b
		}

		var task *string
		if t, ok := event.Fields["task"].(string); ok {
			task = &t
		}

		thread := "main"
		if t, ok := event.Fields["thread"].(string); ok {
			thread = t
		}

		spanID := fmt.Sprintf("e-%d", idx)

		var parentSpanID *string
		if idx > 0 {
			p := fmt.Sprintf("e-%d", idx-1)
			parentSpanID = &p
		}

		count := uint64(1)

		tMono := uint64(idx)

		out = append(out, Event{
			TVirtual:     event.TimeMs,
			TMono:        &tMono,
			Kind:         kind,
			RunID:        runID,
			Seed:         seed,
			Thread:       thread,
			Task:         task,
			SpanID:       spanID,
			ParentSpanID: parentSpanID,
			Tags:         tags,
			Cost: Cost{
				DurationMs: duration,
				Bytes:      bytes,
				Count:      &count,
			},
		})
	}

	return out
}

// mapEventKind classifies a raw trace event name into a reducer-facing Kind.
func mapEventKind(name string) EventKind {
	switch name {
	case "memory_alloc":
		return KindAlloc
	case "memory_free":
		return KindFree
	case "http_request", "proc_spawn":
		return KindIO
	case "net_drop", "net_deliver":
		return KindNet
	case "deliver", "partition", "heal", "crash", "restart":
		return KindSched
	default:
		return KindEvent
	}
}

func stringifyTag(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func fieldUint64(fields map[string]any, key string) (uint64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}

	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}

	return uint64(f), true
}
