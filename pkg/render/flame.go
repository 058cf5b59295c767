// Package render turns a profile bundle into the on-disk shapes consumers
// expect: folded text, a hand-drawn SVG flamegraph, Speedscope JSON, a
// timeline HTML page, and pprof/OTLP-shaped JSON exports. None of these
// reach for a charting library — every renderer is a fixed-layout string
// or JSON builder over the already-derived profile structs.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ariacomputecompany/fozzy/pkg/profile"
)

const (
	flameWidth   = 900
	flameBarH    = 18
	flameGap     = 4
	flameBarMaxW = 820
)

// HeapFolded derives folded-stack rows from a heap profile's hotspots, one
// row per callsite under a synthetic "fozzy::heap" root frame.
func HeapFolded(heap profile.HeapProfile) []profile.FoldedStack {
	out := make([]profile.FoldedStack, 0, len(heap.Hotspots))

	for _, h := range heap.Hotspots {
		weight := h.AllocBytes
		if weight < 1 {
			weight = 1
		}

		out = append(out, profile.FoldedStack{
			Stack:  fmt.Sprintf("fozzy::heap;callsite::%s", h.CallsiteHash),
			Weight: weight,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}

		return out[i].Stack < out[j].Stack
	})

	return out
}

// FoldedText renders folded stacks in the one-line-per-stack
// "stack weight" collapsed format.
func FoldedText(folded []profile.FoldedStack) string {
	if len(folded) == 0 {
		return "# empty profile: no samples in trace"
	}

	var b strings.Builder

	for _, row := range folded {
		fmt.Fprintf(&b, "%s %d\n", row.Stack, row.Weight)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FoldedSVG renders folded stacks as a fixed-layout bar chart: one 18px-tall
// bar per stack, 4px gaps, 900px wide, proportioned against the heaviest stack.
func FoldedSVG(folded []profile.FoldedStack) string {
	var maxWeight uint64 = 1
	for _, f := range folded {
		if f.Weight > maxWeight {
			maxWeight = f.Weight
		}
	}

	height := len(folded)*(flameBarH+flameGap) + 40

	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, flameWidth, height)
	b.WriteString(`<rect width="100%" height="100%" fill="#111827"/>`)

	if len(folded) == 0 {
		b.WriteString(`<text x="24" y="36" fill="#e5e7eb" font-size="13">empty profile: no samples in trace</text>`)
	}

	for i, row := range folded {
		y := 20 + i*(flameBarH+flameGap)
		w := int(math.Round((float64(row.Weight) / float64(maxWeight)) * flameBarMaxW))

		fmt.Fprintf(&b, `<rect x="20" y="%d" width="%d" height="%d" fill="#2563eb"/>`, y, w, flameBarH)
		fmt.Fprintf(&b, `<text x="24" y="%d" fill="#e5e7eb" font-size="12">%s</text>`,
			y+13, escapeXML(fmt.Sprintf("%s (%d)", row.Stack, row.Weight)))
	}

	b.WriteString(`</svg>`)

	return b.String()
}

// Speedscope is the https://speedscope.app self-profile JSON document shape.
type Speedscope struct {
	Schema             string                 `json:"$schema"`
	Shared             speedscopeShared       `json:"shared"`
	Profiles           []speedscopeProfile    `json:"profiles"`
	ActiveProfileIndex int                    `json:"activeProfileIndex"`
	Exporter           string                 `json:"exporter"`
}

type speedscopeShared struct {
	Frames []speedscopeFrame `json:"frames"`
}

type speedscopeFrame struct {
	Name string `json:"name"`
}

type speedscopeProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue uint64    `json:"startValue"`
	EndValue   uint64    `json:"endValue"`
	Samples    [][]int   `json:"samples"`
	Weights    []uint64  `json:"weights"`
}

// FoldedToSpeedscope builds the Speedscope sampled-profile document for one
// run's folded stacks.
func FoldedToSpeedscope(run string, folded []profile.FoldedStack) Speedscope {
	frameIndex := map[string]int{}

	var frames []speedscopeFrame

	samples := make([][]int, 0, len(folded))
	weights := make([]uint64, 0, len(folded))

	var total uint64

	for _, row := range folded {
		stack := make([]int, 0, 2)

		for _, frame := range strings.Split(row.Stack, ";") {
			idx, ok := frameIndex[frame]
			if !ok {
				idx = len(frames)
				frames = append(frames, speedscopeFrame{Name: frame})
				frameIndex[frame] = idx
			}

			stack = append(stack, idx)
		}

		samples = append(samples, stack)
		weights = append(weights, row.Weight)
		total += row.Weight
	}

	return Speedscope{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: speedscopeShared{Frames: frames},
		Profiles: []speedscopeProfile{{
			Type:       "sampled",
			Name:       "fozzy profile " + run,
			Unit:       "milliseconds",
			StartValue: 0,
			EndValue:   total,
			Samples:    samples,
			Weights:    weights,
		}},
		ActiveProfileIndex: 0,
		Exporter:           "fozzy",
	}
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)

	return r.Replace(s)
}
