package render

import "github.com/ariacomputecompany/fozzy/pkg/profile"

// Pprof is the pprof-shaped JSON export document: a thin wrapper around the
// raw CPU samples and the symbol table they reference, not the binary
// protobuf pprof format.
type Pprof struct {
	SchemaVersion string               `json:"schemaVersion"`
	Run           string               `json:"run"`
	SampleType    string               `json:"sampleType"`
	Samples       []profile.CpuSample  `json:"samples"`
	Symbols       profile.SymbolsMap   `json:"symbols"`
}

// ToPprof builds the pprof-shaped export for one run's CPU samples.
func ToPprof(run string, cpu profile.CpuProfile, symbols profile.SymbolsMap) Pprof {
	return Pprof{
		SchemaVersion: "fozzy.profile_pprof.v1",
		Run:           run,
		SampleType:    "cpu",
		Samples:       cpu.Samples,
		Symbols:       symbols,
	}
}

// OTLP is the OTLP-shaped JSON export document: a minimal resource/metrics/
// spans envelope, not a binary OTLP protobuf payload.
type OTLP struct {
	SchemaVersion string            `json:"schemaVersion"`
	Run           string            `json:"run"`
	Resource      map[string]string `json:"resource"`
	Metrics       profile.Metrics   `json:"metrics"`
	Spans         []profile.Event   `json:"spans"`
}

// ToOTLP builds the OTLP-shaped export for one run's metrics and timeline.
func ToOTLP(run string, metrics profile.Metrics, timeline []profile.Event) OTLP {
	return OTLP{
		SchemaVersion: "fozzy.profile_otlp.v1",
		Run:           run,
		Resource: map[string]string{
			"service.name": "fozzy",
			"run.id":       metrics.RunID,
		},
		Metrics: metrics,
		Spans:   timeline,
	}
}
