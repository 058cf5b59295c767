package profile

import (
	"fmt"
	"sort"

	"github.com/ariacomputecompany/fozzy/pkg/trace"
)

// BuildSymbolsMap collects the distinct event names observed in the
// timeline into a single synthetic "fozzy-runtime" module.
func BuildSymbolsMap(f *trace.File, timeline []Event) SymbolsMap {
	seen := map[string]struct{}{}

	for _, event := range timeline {
		if name, ok := event.Tags["name"]; ok {
			seen[name] = struct{}{}
		}
	}

	symbols := make([]string, 0, len(seen))
	for name := range seen {
		symbols = append(symbols, name)
	}

	sort.Strings(symbols)

	commit := "dev"
	if f.Engine.CommitID != nil {
		commit = *f.Engine.CommitID
	}

	return SymbolsMap{
		SchemaVersion: "fozzy.profile_symbols.v1",
		RunID:         f.Summary.Identity.RunID,
		Modules: []SymbolModule{
			{
				Name:    "fozzy-runtime",
				BuildID: fmt.Sprintf("%s-%s", f.Engine.Version, commit),
				Symbols: symbols,
			},
		},
	}
}
