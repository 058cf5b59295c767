package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ariacomputecompany/fozzy/pkg/ferrors"
)

// schemaDocument is the embedded JSON Schema the trace codec validates a
// decoded File against before handing it back to a caller. It encodes the
// required-field subset of the artifact contract in §6: format/version/
// engine/mode/decisions/events/summary are mandatory, everything else is
// optional and unknown fields are ignored on read. decisions and events may
// be null, which is how Write encodes an empty (nil) log.
const schemaDocument = `{
  "type": "object",
  "required": ["format", "version", "engine", "mode", "decisions", "events", "summary"],
  "properties": {
    "format": {"type": "string", "const": "fozzy-trace"},
    "version": {"type": "integer"},
    "engine": {
      "type": "object",
      "required": ["version"],
      "properties": {"version": {"type": "string"}}
    },
    "mode": {"type": "string", "enum": ["run", "fuzz", "explore", "replay", "shrink"]},
    "decisions": {"type": ["array", "null"]},
    "events": {"type": ["array", "null"]},
    "summary": {"type": "object"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schemaDocument)

// Read decodes a trace artifact from path, validating it against the trace
// schema and rejecting any version other than CurrentVersion.
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.Io, "read trace file", err)
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var f File

	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, ferrors.Wrap(ferrors.Json, "decode trace file", err)
	}

	if f.Version != CurrentVersion {
		return nil, ferrors.New(
			ferrors.Trace,
			fmt.Sprintf("unsupported trace version %d (expected %d)", f.Version, CurrentVersion),
		)
	}

	return &f, nil
}

func validateSchema(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return ferrors.Wrap(ferrors.Json, "validate trace schema", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return ferrors.New(ferrors.Trace, fmt.Sprintf("schema mismatch: %v", msgs))
	}

	return nil
}

// Write serializes f as pretty-printed JSON to path, creating parent
// directories as needed. Write is pure: it never synthesizes timestamps or
// other fields — the producer is responsible for fixing Engine and
// Summary.StartedAt/FinishedAt before calling Write.
func Write(f *File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return ferrors.Wrap(ferrors.Io, "create trace parent dir", err)
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")

	if err := enc.Encode(f); err != nil {
		return ferrors.Wrap(ferrors.Json, "encode trace file", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return ferrors.Wrap(ferrors.Io, "write trace file", err)
	}

	return nil
}
