package views

import (
	"fmt"
	"strings"

	zone "github.com/lrstanley/bubblezone"

	"procsweep/internal/session"
	"procsweep/ui/tui/styles"
)

// Column layout shared by the flat table and the header. Widths are
// terminal cells; NAME absorbs whatever is left on wide terminals.
const (
	colMark   = 2
	colPID    = 7
	colUser   = 10
	colCPU    = 6
	colMem    = 9
	colUptime = 9
	colState  = 9
	colName   = 24
)

var headerColumns = []struct {
	label  string
	column session.SortColumn
	width  int
}{
	{"PID", session.SortPID, colPID},
	{"NAME", session.SortName, colName},
	{"USER", session.SortUser, colUser},
	{"CPU%", session.SortCPU, colCPU},
	{"MEM", session.SortMemory, colMem},
	{"UPTIME", session.SortRuntime, colUptime},
}

// RenderHeader draws the column header with the active sort marker.
// Each label is a mouse zone so clicking a header sorts by it.
func RenderHeader(sess *session.Session, theme styles.Theme) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", colMark))
	for _, col := range headerColumns {
		label := col.label
		if sess.SortBy() == col.column {
			if sess.SortDescending() {
				label += "▼"
			} else {
				label += "▲"
			}
		}
		cell := theme.Header.Render(pad(label, col.width))
		sb.WriteString(zone.Mark("col_"+col.column.String(), cell))
		sb.WriteString(" ")
	}
	sb.WriteString(theme.Header.Render("STATE"))
	return sb.String()
}

// RenderTable draws the filtered process rows. The row under the cursor
// gets the selection style, marked rows a leading marker, and fuzzy or
// regex hits are underlined inside the name cell. The anchor is the
// spring-smoothed scroll position, which trails the cursor slightly.
func RenderTable(sess *session.Session, theme styles.Theme, height, anchor int) string {
	rows := sess.Rows()
	if len(rows) == 0 {
		return theme.Dim.Render("  nothing to show")
	}

	top, bottom := viewportBounds(anchor, len(rows), height)
	var sb strings.Builder
	for i := top; i < bottom; i++ {
		row := rows[i]
		base := theme.Row
		if i == sess.Selected() {
			base = theme.Selected
		}
		render := base.Render

		mark := "  "
		if sess.Marked(row.Snap.PID) {
			mark = theme.Marked.Render("✓ ")
		}

		line := mark +
			render(fmt.Sprintf("%*d", colPID, row.Snap.PID)) + " " +
			highlightName(row.Snap.Name, row.Highlights, theme, colName, render) + " " +
			render(pad(row.Snap.User, colUser)) + " " +
			render(fmt.Sprintf("%*.1f", colCPU, row.Snap.CPUPercent)) + " " +
			render(pad(FormatBytes(row.Snap.MemoryBytes), colMem)) + " " +
			render(pad(FormatUptime(row.Snap.Runtime), colUptime)) + " " +
			render(pad(row.Snap.State.String(), colState))

		sb.WriteString(zone.Mark(fmt.Sprintf("row_%d", i), line))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderKilledTable draws the /killed view: past successful deliveries,
// newest first.
func RenderKilledTable(sess *session.Session, theme styles.Theme, height int) string {
	hist := sess.HistoryRows()
	if len(hist) == 0 {
		return theme.Dim.Render("  nothing killed yet")
	}

	top, bottom := viewportBounds(sess.Selected(), len(hist), height)
	var sb strings.Builder
	sb.WriteString(theme.Header.Render(pad("TIME", 9)+" "+pad("PID", colPID)+" "+pad("NAME", colName)+" SIGNAL") + "\n")
	for i := top; i < bottom; i++ {
		h := hist[i]
		base := theme.Row
		if i == sess.Selected() {
			base = theme.Selected
		}
		line := base.Render(pad(h.Event.Time.Format("15:04:05"), 9)) + " " +
			base.Render(fmt.Sprintf("%*d", colPID, h.Event.PID)) + " " +
			highlightName(h.Event.ProcessName, h.Highlights, theme, colName, base.Render) + " " +
			base.Render(h.Event.Signal.String())
		sb.WriteString(zone.Mark(fmt.Sprintf("row_%d", i), line))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// viewportBounds keeps the cursor visible inside a height-row window.
func viewportBounds(selected, total, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	top := selected - height/2
	if top < 0 {
		top = 0
	}
	if top > total-height {
		top = total - height
	}
	return top, top + height
}
