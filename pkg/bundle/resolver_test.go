package bundle_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ariacomputecompany/fozzy/internal/telemetry"
	"github.com/ariacomputecompany/fozzy/pkg/bundle"
	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

func sampleTrace() *trace.File {
	return &trace.File{
		Format:  trace.Format,
		Version: trace.CurrentVersion,
		Engine:  trace.Engine{Version: "0.1.0"},
		Mode:    trace.ModeRun,
		Events: []trace.Event{
			{TimeMs: 0, Name: "setup", Fields: map[string]any{}},
			{TimeMs: 5, Name: "memory_alloc", Fields: map[string]any{
				"alloc_id": "1", "callsite_hash": "abc", "bytes": float64(64),
			}},
		},
		Summary: trace.RunSummary{Identity: trace.Identity{RunID: "run-1"}},
	}
}

func TestLoadDerivesArtifactsFromTrace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := bundle.NewResolver(dir)
	runDir := r.RunDir("run-1")

	require.NoError(t, trace.Write(sampleTrace(), filepath.Join(runDir, "trace.fozzy")))

	b, err := bundle.Load(context.Background(), r, "run-1", nil)
	require.NoError(t, err)
	assert.Equal(t, runDir, b.ArtifactsDir)
	assert.Len(t, b.Timeline, 2)
	assert.True(t, bundle.ArtifactsExist(runDir))
}

func TestLoadRecordsReducerMetrics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := bundle.NewResolver(dir)
	runDir := r.RunDir("run-2")

	require.NoError(t, trace.Write(sampleTrace(), filepath.Join(runDir, "trace.fozzy")))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rm, err := telemetry.NewReducerMetrics(mp.Meter("test"))
	require.NoError(t, err)

	_, err = bundle.Load(context.Background(), r, "run-2", rm)
	require.NoError(t, err)

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &data))

	var derivations *metricdata.Metrics

	for idx := range data.ScopeMetrics {
		for midx := range data.ScopeMetrics[idx].Metrics {
			if data.ScopeMetrics[idx].Metrics[midx].Name == "fozzy.bundle.derivations.total" {
				derivations = &data.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	require.NotNil(t, derivations, "fozzy.bundle.derivations.total metric not found")

	sum, ok := derivations.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestResolveTraceAcceptsLiteralPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "somewhere", "trace.fozzy")
	require.NoError(t, trace.Write(sampleTrace(), path))

	r := bundle.NewResolver(dir)
	artifactsDir, tracePath, err := r.ResolveTrace(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), artifactsDir)
	assert.Equal(t, path, tracePath)
}

func TestResolveTraceErrorsWhenMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := bundle.NewResolver(dir)

	_, _, err := r.ResolveTrace("does-not-exist")
	require.Error(t, err)
}
