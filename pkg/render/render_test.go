package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariacomputecompany/fozzy/pkg/profile"
	"github.com/ariacomputecompany/fozzy/pkg/render"
)

func TestFoldedTextEmptyProfile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "# empty profile: no samples in trace", render.FoldedText(nil))
}

func TestFoldedTextRendersOneLinePerStack(t *testing.T) {
	t.Parallel()

	folded := []profile.FoldedStack{{Stack: "a;b", Weight: 3}, {Stack: "a;c", Weight: 1}}
	text := render.FoldedText(folded)
	assert.Equal(t, "a;b 3\na;c 1", text)
}

func TestFoldedSVGContainsBars(t *testing.T) {
	t.Parallel()

	folded := []profile.FoldedStack{{Stack: "a;b", Weight: 10}}
	svg := render.FoldedSVG(folded)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "<rect")
}

func TestHeapFoldedSortsDescendingByBytes(t *testing.T) {
	t.Parallel()

	heap := profile.HeapProfile{Hotspots: []profile.HeapCallsite{
		{CallsiteHash: "x", AllocBytes: 10},
		{CallsiteHash: "y", AllocBytes: 50},
	}}

	folded := render.HeapFolded(heap)
	require.Len(t, folded, 2)
	assert.Equal(t, uint64(50), folded[0].Weight)
}

func TestFoldedToSpeedscopeDeduplicatesFrames(t *testing.T) {
	t.Parallel()

	folded := []profile.FoldedStack{
		{Stack: "fozzy::runtime;event::a", Weight: 2},
		{Stack: "fozzy::runtime;event::b", Weight: 3},
	}

	s := render.FoldedToSpeedscope("run-1", folded)
	assert.Len(t, s.Shared.Frames, 3)
	assert.Equal(t, uint64(5), s.Profiles[0].EndValue)
}

func TestTimelineHTMLEscapesTags(t *testing.T) {
	t.Parallel()

	events := []profile.Event{{
		TVirtual: 1, Kind: profile.KindEvent, Thread: "main", SpanID: "e-0",
		Tags: map[string]string{"name": "<script>"},
	}}

	html := render.TimelineHTML(events)
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}
