package render

import (
	"fmt"
	"strings"

	"github.com/ariacomputecompany/fozzy/pkg/profile"
)

// TimelineHTML renders the profile timeline as a single self-contained HTML
// page: one table row per event, dark theme, monospace font.
func TimelineHTML(events []profile.Event) string {
	var rows strings.Builder

	for _, e := range events {
		name := e.Tags["name"]
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			e.TVirtual, e.Kind, escapeXML(e.Thread), escapeXML(e.SpanID), escapeXML(name))
	}

	return fmt.Sprintf(
		`<!doctype html><html><head><meta charset="utf-8"><title>Fozzy Profile Timeline</title>`+
			`<style>body{font-family:ui-monospace,Menlo,monospace;background:#0b1020;color:#e5e7eb;padding:20px}`+
			`table{border-collapse:collapse;width:100%%}th,td{padding:6px 8px;border-bottom:1px solid #1f2937;text-align:left}</style>`+
			`</head><body><h1>Fozzy Profile Timeline</h1><table><thead><tr>`+
			`<th>t_virtual</th><th>kind</th><th>thread</th><th>span_id</th><th>name</th>`+
			`</tr></thead><tbody>%s</tbody></table></body></html>`,
		rows.String(),
	)
}
