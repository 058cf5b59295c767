// Package bundle resolves a run selector (a literal trace path or a run id)
// to its trace and derived profile artifacts, re-deriving the artifacts from
// the trace whenever a trace is found. Grounded on the
// checkpoint manager's directory-layout conventions; artifact I/O reuses
// the codec abstraction from pkg/persist.
package bundle

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariacomputecompany/fozzy/internal/telemetry"
	"github.com/ariacomputecompany/fozzy/pkg/ferrors"
	"github.com/ariacomputecompany/fozzy/pkg/persist"
	"github.com/ariacomputecompany/fozzy/pkg/profile"
	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

// artifactBasenames lists the profile derivative files a complete bundle
// must carry, named without their codec extension; ArtifactsExist checks
// for all of them.
var artifactBasenames = []string{
	"profile.timeline",
	"profile.cpu",
	"profile.heap",
	"profile.latency",
	"profile.metrics",
	"symbols",
}

var jsonCodec = persist.NewJSONCodec()

// manifest is the minimal subset of a run manifest the resolver needs.
type manifest struct {
	TracePath string `json:"trace_path"`
}

// Resolver locates run artifacts under BaseDir/runs/<run_id>/.
type Resolver struct {
	BaseDir string
}

// NewResolver builds a Resolver rooted at baseDir.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{BaseDir: baseDir}
}

// RunDir returns the artifacts directory for a run id.
func (r *Resolver) RunDir(runID string) string {
	return filepath.Join(r.BaseDir, "runs", runID)
}

// Bundle is a fully loaded set of derived profile artifacts for one run.
type Bundle struct {
	ArtifactsDir string
	Timeline     []profile.Event
	Cpu          profile.CpuProfile
	Heap         profile.HeapProfile
	Latency      profile.LatencyProfile
	Metrics      profile.Metrics
	Symbols      profile.SymbolsMap
}

// ResolveArtifacts locates the artifacts directory for selector and, if a
// trace file can be found, its path. selector may be a literal path to a
// ".fozzy" trace file, or a run id resolved under BaseDir/runs/<id>/. When
// a bare run directory has no trace.fozzy, report.json and manifest.json
// are consulted in turn for a pointer to the original trace.
func (r *Resolver) ResolveArtifacts(selector string) (string, string, error) {
	if info, err := os.Stat(selector); err == nil && !info.IsDir() &&
		strings.EqualFold(filepath.Ext(selector), ".fozzy") {
		return filepath.Dir(selector), selector, nil
	}

	artifactsDir := r.RunDir(selector)

	tracePath := filepath.Join(artifactsDir, "trace.fozzy")
	if _, err := os.Stat(tracePath); err == nil {
		return artifactsDir, tracePath, nil
	}

	if summary, err := readReportSummary(filepath.Join(artifactsDir, "report.json")); err == nil {
		if summary.Identity.TracePath != nil {
			if _, statErr := os.Stat(*summary.Identity.TracePath); statErr == nil {
				return artifactsDir, *summary.Identity.TracePath, nil
			}
		}
	}

	if m, err := readManifest(filepath.Join(artifactsDir, "manifest.json")); err == nil && m.TracePath != "" {
		if _, statErr := os.Stat(m.TracePath); statErr == nil {
			return artifactsDir, m.TracePath, nil
		}
	}

	return artifactsDir, "", nil
}

// ResolveTrace is ResolveArtifacts narrowed to the case a trace path is
// required: it errors when none can be found.
func (r *Resolver) ResolveTrace(selector string) (string, string, error) {
	artifactsDir, tracePath, err := r.ResolveArtifacts(selector)
	if err != nil {
		return "", "", err
	}

	if tracePath == "" {
		return "", "", ferrors.New(
			ferrors.InvalidArgument,
			"no trace.fozzy found for "+selector+"; profiler requires trace artifacts",
		)
	}

	return artifactsDir, tracePath, nil
}

// ArtifactsExist reports whether every derived profile artifact is present
// in artifactsDir.
func ArtifactsExist(artifactsDir string) bool {
	for _, name := range artifactBasenames {
		if _, err := os.Stat(filepath.Join(artifactsDir, name+jsonCodec.Extension())); err != nil {
			return false
		}
	}

	return true
}

// timeReducer runs fn, recording its wall-clock duration against rm under
// name when rm is non-nil. Timing a reducer does not make it impure — the
// reducer itself still only reads f and timeline.
func timeReducer[T any](ctx context.Context, rm *telemetry.ReducerMetrics, name string, fn func() T) T {
	start := time.Now()
	result := fn()

	if rm != nil {
		rm.RecordReducer(ctx, name, time.Since(start))
	}

	return result
}

// WriteArtifactsFromTrace derives the full profile bundle from f and writes
// each artifact into artifactsDir, creating it if necessary. When rm is
// non-nil, each reducer's duration and the overall derivation are recorded.
func WriteArtifactsFromTrace(ctx context.Context, f *trace.File, artifactsDir string, rm *telemetry.ReducerMetrics) error {
	if err := os.MkdirAll(artifactsDir, 0o750); err != nil {
		return ferrors.Wrap(ferrors.Io, "create artifacts dir", err)
	}

	timeline := timeReducer(ctx, rm, "timeline", func() []profile.Event { return profile.BuildTimeline(f) })
	cpu := timeReducer(ctx, rm, "cpu", func() profile.CpuProfile { return profile.BuildCpuProfile(f, timeline) })
	heap := timeReducer(ctx, rm, "heap", func() profile.HeapProfile { return profile.BuildHeapProfile(f, timeline) })
	latency := timeReducer(ctx, rm, "latency", func() profile.LatencyProfile { return profile.BuildLatencyProfile(f, timeline) })
	symbols := timeReducer(ctx, rm, "symbols", func() profile.SymbolsMap { return profile.BuildSymbolsMap(f, timeline) })
	metrics := timeReducer(ctx, rm, "metrics", func() profile.Metrics {
		return profile.BuildMetrics(f, timeline, cpu, heap, latency)
	})

	if rm != nil {
		rm.RecordBundleDerivation(ctx)
	}

	writes := []struct {
		basename string
		v        any
	}{
		{"profile.timeline", timeline},
		{"profile.cpu", cpu},
		{"profile.heap", heap},
		{"profile.latency", latency},
		{"profile.metrics", metrics},
		{"symbols", symbols},
	}

	for _, w := range writes {
		if err := persist.SaveState(artifactsDir, w.basename, jsonCodec, w.v); err != nil {
			return ferrors.Wrap(ferrors.Io, "write profile artifact "+w.basename, err)
		}
	}

	return nil
}

// Load resolves selector to its artifacts, regenerating them from the
// backing trace when one is found (so artifacts never drift from the
// trace that produced them), and returns a fully loaded Bundle. rm may be
// nil to skip instrumentation.
func Load(ctx context.Context, r *Resolver, selector string, rm *telemetry.ReducerMetrics) (*Bundle, error) {
	artifactsDir, tracePath, err := r.ResolveArtifacts(selector)
	if err != nil {
		return nil, err
	}

	if tracePath != "" {
		f, readErr := trace.Read(tracePath)
		if readErr != nil {
			return nil, readErr
		}

		if writeErr := WriteArtifactsFromTrace(ctx, f, artifactsDir, rm); writeErr != nil {
			return nil, writeErr
		}
	} else if !ArtifactsExist(artifactsDir) {
		return nil, ferrors.New(
			ferrors.InvalidArgument,
			"no trace.fozzy found for "+selector+"; profiler requires trace artifacts",
		)
	}

	bundle := &Bundle{ArtifactsDir: artifactsDir}

	loads := []struct {
		basename string
		v        any
	}{
		{"profile.timeline", &bundle.Timeline},
		{"profile.cpu", &bundle.Cpu},
		{"profile.heap", &bundle.Heap},
		{"profile.latency", &bundle.Latency},
		{"profile.metrics", &bundle.Metrics},
		{"symbols", &bundle.Symbols},
	}

	for _, l := range loads {
		if err := persist.LoadState(artifactsDir, l.basename, jsonCodec, l.v); err != nil {
			return nil, ferrors.Wrap(ferrors.Io, "read profile artifact "+l.basename, err)
		}
	}

	return bundle, nil
}

func readReportSummary(path string) (*trace.RunSummary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var summary trace.RunSummary

	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

func readManifest(path string) (*manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m manifest

	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	return &m, nil
}
