package views

import (
	"fmt"
	"strings"

	zone "github.com/lrstanley/bubblezone"

	"procsweep/internal/proctree"
	"procsweep/internal/session"
	"procsweep/ui/tui/styles"
)

// RenderTree draws the process forest with branch glyphs and per-node
// subtree CPU/memory totals. Collapsed nodes show a fold marker and
// keep reporting the totals of their hidden children.
func RenderTree(sess *session.Session, theme styles.Theme, height, anchor int) string {
	rows := sess.TreeRows()
	if len(rows) == 0 {
		return theme.Dim.Render("  nothing to show")
	}

	top, bottom := viewportBounds(anchor, len(rows), height)
	var sb strings.Builder
	sb.WriteString(theme.Header.Render(pad("PID", colPID)+" "+pad("PROCESS", 40)+" "+pad("ΣCPU%", 7)+" ΣMEM") + "\n")
	for i := top; i < bottom; i++ {
		sb.WriteString(zone.Mark(fmt.Sprintf("row_%d", i), treeLine(sess, rows[i], i == sess.Selected(), theme)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderTreePrompt draws the subtree kill preview with its y/n question.
func RenderTreePrompt(rows []proctree.Row, theme styles.Theme) string {
	var sb strings.Builder
	sb.WriteString("About to signal this whole subtree, children first:\n\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("  %s%s (%d)\n", row.Prefix, row.Name, row.PID))
	}
	sb.WriteString("\n" + theme.StatusWarn.Render("Proceed? [y/n]"))
	return theme.Prompt.Render(sb.String())
}

func treeLine(sess *session.Session, row proctree.Row, selected bool, theme styles.Theme) string {
	base := theme.Row
	if selected {
		base = theme.Selected
	}

	fold := "  "
	if row.HasChildren {
		if row.Collapsed {
			fold = "▸ "
		} else {
			fold = "▾ "
		}
	}
	mark := " "
	if sess.Marked(row.PID) {
		mark = theme.Marked.Render("✓")
	}

	// Pad the plain text before styling; escape codes have no cell width.
	label := pad(row.Prefix+fold+row.Name, 40)

	return mark +
		base.Render(fmt.Sprintf("%*d ", colPID, row.PID)) +
		base.Render(label) + " " +
		base.Render(fmt.Sprintf("%*.1f", 7, row.SubtreeCPU)) + " " +
		base.Render(FormatBytes(row.SubtreeMemory))
}
