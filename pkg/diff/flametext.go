package diff

import (
	diffmatchpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// FlameTextDiff line-diffs two rendered folded-stack texts (as produced by
// render.FoldedText), supplementing the structured metric Diff with a
// human-scannable view of which stacks appeared, vanished, or shifted
// weight between two runs.
func FlameTextDiff(left, right string) string {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(left, right)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	return dmp.DiffPrettyText(diffs)
}
