// Package telemetry provides OpenTelemetry-based tracing, metrics, and
// structured logging for the fozzy analysis core. It is an ambient concern:
// bundle derivation (per-reducer timing), memory allocation, and shrink
// contract checks record metrics through a ReducerMetrics when a caller
// hands them one. The core packages do not log through this package; the
// logger built by Init is for the external surface (CLI, server, test
// harness) that drives them.
package telemetry

import "log/slog"

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "fozzy"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5
)

// Config holds all telemetry configuration. Callers build one from whatever
// configuration surface they own (flags, env, a config file) — this package
// never reads configuration itself.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "ci", "dev").
	Environment string

	// RunID identifies the scenario run this process is analyzing, attached
	// to every log record the way codefang attaches service/env/mode.
	RunID string

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// DebugTrace forces 100% trace sampling when true.
	DebugTrace bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0) when DebugTrace is false.
	SampleRatio float64

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
